package ports

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *domain.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error)
	GetByToken(ctx context.Context, pollID uuid.UUID, token string) (*domain.Participant, error)
	GetByUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Participant, error)
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Participant, error)
	Update(ctx context.Context, p *domain.Participant) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetVoted(ctx context.Context, id uuid.UUID) error
	// ConsumeToken flips token_used under a compare-and-swap guard; a token
	// already consumed by a concurrent request yields domain.ErrTokenUsed.
	ConsumeToken(ctx context.Context, id uuid.UUID) error
}

type EnrollParticipantInput struct {
	PollID     uuid.UUID
	Email      string
	Name       string
	VoteWeight float64
}

type ParticipantService interface {
	Enroll(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, input EnrollParticipantInput, meta RequestMeta) (*domain.Participant, error)
	List(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) ([]*domain.Participant, error)
	Remove(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID, participantID uuid.UUID, meta RequestMeta) error
	RegenerateToken(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID, participantID uuid.UUID, meta RequestMeta) (*domain.Participant, error)
	MarkTokenViewed(ctx context.Context, pollID uuid.UUID, token string) error
}
