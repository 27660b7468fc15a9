package domain

import (
	"time"

	"github.com/google/uuid"
)

type PollStatus string

const (
	PollStatusDraft     PollStatus = "draft"
	PollStatusActive    PollStatus = "active"
	PollStatusCompleted PollStatus = "completed"
	PollStatusCancelled PollStatus = "cancelled"
)

type Poll struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	StartDate      int64      `json:"start_date"`
	EndDate        int64      `json:"end_date"`
	Status         PollStatus `json:"status"`
	ManagerID      uuid.UUID  `json:"manager_id"`
	CreatedByID    uuid.UUID  `json:"created_by_id"`
	Settings       Settings   `json:"settings"`
	Ballot         []Question `json:"ballot"`
	WillSendEmails bool       `json:"will_send_emails"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Ended is derived from the end date, never from the stored status.
func (p *Poll) Ended(nowMillis int64) bool {
	return nowMillis > p.EndDate
}

// VotingOpen reports whether votes are currently accepted.
func (p *Poll) VotingOpen(nowMillis int64) bool {
	return p.Status == PollStatusActive && nowMillis >= p.StartDate && nowMillis <= p.EndDate
}

// Question returns the ballot question with the given id, if present.
func (p *Poll) Question(id uuid.UUID) (Question, bool) {
	for _, q := range p.Ballot {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

type Question struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	MinSelection int       `json:"min_selection"`
	MaxSelection int       `json:"max_selection"`
	Options      []Option  `json:"options"`
}

func (q *Question) HasOption(id uuid.UUID) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

type Option struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// Settings is the per-poll disclosure and voting configuration. All booleans
// default to false except AllowResultsView; DefaultSettings applies the
// defaults at the creation boundary so read sites never re-derive them.
type Settings struct {
	ShowParticipantNames    bool       `json:"show_participant_names"`
	ShowParticipantInitials bool       `json:"show_participant_initials"`
	ShowVoteWeights         bool       `json:"show_vote_weights"`
	ShowVoteCounts          bool       `json:"show_vote_counts"`
	ShowResultsBeforeEnd    bool       `json:"show_results_before_end"`
	AllowResultsView        bool       `json:"allow_results_view"`
	VoteWeightEnabled       bool       `json:"vote_weight_enabled"`
	AllowVoteChanges        bool       `json:"allow_vote_changes"`
	AllowInPersonVoting     bool       `json:"allow_in_person_voting"`
	MailTemplateID          *uuid.UUID `json:"mail_template_id,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{AllowResultsView: true}
}

type PollRoleRelation string

const (
	RelationAuditor PollRoleRelation = "auditor"
	RelationEditor  PollRoleRelation = "editor"
)

// PollRoleAssignment maps a sub-admin user to an auditor or editor relation on
// one poll. The manager role is the poll's ManagerID field, not a relation.
type PollRoleAssignment struct {
	PollID    uuid.UUID        `json:"poll_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Relation  PollRoleRelation `json:"relation"`
	CreatedAt time.Time        `json:"created_at"`
}
