package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResultsView is the tier-redacted tabulation of a poll.
type ResultsView struct {
	PollID       uuid.UUID           `json:"poll_id"`
	Title        string              `json:"title"`
	Status       PollStatus          `json:"status"`
	PollEnded    bool                `json:"poll_ended"`
	Questions    []QuestionResult    `json:"questions"`
	Participants []ParticipantResult `json:"participants,omitempty"`
	Statistics   Statistics          `json:"statistics"`
	Permissions  ResultsPermissions  `json:"permissions"`
}

type QuestionResult struct {
	QuestionID  uuid.UUID      `json:"question_id"`
	Title       string         `json:"title"`
	TotalVotes  int64          `json:"total_votes,omitempty"`
	TotalWeight float64        `json:"total_weight,omitempty"`
	Options     []OptionResult `json:"options,omitempty"`
}

type OptionResult struct {
	OptionID           uuid.UUID `json:"option_id"`
	Title              string    `json:"title"`
	VoteCount          int64     `json:"vote_count"`
	WeightedVoteCount  float64   `json:"weighted_vote_count"`
	Percentage         float64   `json:"percentage"`
	WeightedPercentage float64   `json:"weighted_percentage"`
}

// ParticipantResult is the participant-detail projection; identifying fields
// are blanked according to the requester tier and poll settings. ID is set
// only for privileged tiers so the participant view never leaks voter ids.
type ParticipantResult struct {
	ID         *uuid.UUID `json:"id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Email      string     `json:"email,omitempty"`
	IsUser     bool       `json:"is_user,omitempty"`
	VoteWeight *float64   `json:"vote_weight,omitempty"`
	HasVoted   bool       `json:"has_voted"`
	LastVoteAt *time.Time `json:"last_vote_at,omitempty"`
}

type Statistics struct {
	TotalParticipants int64    `json:"total_participants"`
	VotedParticipants int64    `json:"voted_participants"`
	ParticipationRate float64  `json:"participation_rate"`
	TotalVoteWeight   *float64 `json:"total_vote_weight,omitempty"`
}

// ResultsPermissions echoes the resolved visibility flags so callers can
// render conditionally without re-deriving the rules.
type ResultsPermissions struct {
	ShowVoteCounts          bool `json:"show_vote_counts"`
	ShowResultsBreakdown    bool `json:"show_results_breakdown"`
	ShowParticipantNames    bool `json:"show_participant_names"`
	ShowParticipantInitials bool `json:"show_participant_initials"`
	ShowVoteWeights         bool `json:"show_vote_weights"`
}
