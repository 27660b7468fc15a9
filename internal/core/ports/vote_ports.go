package ports

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
)

type VoteRepository interface {
	// Replace atomically deletes the participant's existing vote rows for the
	// poll and inserts the new set; a reader never observes a partial state.
	Replace(ctx context.Context, pollID, participantID uuid.UUID, votes []*domain.Vote) error
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Vote, error)
	ListByParticipant(ctx context.Context, pollID, participantID uuid.UUID) ([]*domain.Vote, error)
}

// AuthInput carries exactly one of Token or Email+Password.
type AuthInput struct {
	Token    string
	Email    string
	Password string
}

type SubmitVoteInput struct {
	PollID uuid.UUID
	// Auth identifies the voter; a direct submission is accepted only for the
	// participant the presented token or credentials resolve to.
	Auth    AuthInput
	Payload domain.VotePayload
	// InPersonTargetID, when set, attributes the vote to that participant on
	// behalf of a delegate identified by ActorUserID.
	InPersonTargetID *uuid.UUID
	ActorUserID      *uuid.UUID
	Meta             RequestMeta
}

type MarkInPersonInput struct {
	PollID        uuid.UUID
	ParticipantID uuid.UUID
	CallerID      uuid.UUID
	CallerRole    domain.Role
	Meta          RequestMeta
}

type VoteService interface {
	Authenticate(ctx context.Context, pollID uuid.UUID, input AuthInput) (*domain.Participant, error)
	Submit(ctx context.Context, input SubmitVoteInput) error
	MarkInPersonVoter(ctx context.Context, input MarkInPersonInput) error
}
