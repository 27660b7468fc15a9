package ports

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	Update(ctx context.Context, poll *domain.Poll) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetAll(ctx context.Context) ([]*domain.Poll, error)
	// ListForUser returns polls the user manages, edits or audits.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Poll, error)
	// ListActiveMailable returns active polls flagged to send emails.
	ListActiveMailable(ctx context.Context) ([]*domain.Poll, error)
}

type CreatePollInput struct {
	Title          string
	Description    string
	StartDate      int64
	EndDate        int64
	ManagerID      *uuid.UUID
	Settings       *domain.Settings
	Ballot         []CreateQuestionInput
	WillSendEmails bool
}

type CreateQuestionInput struct {
	Title        string
	MinSelection int
	MaxSelection int
	Options      []CreateOptionInput
}

type CreateOptionInput struct {
	Title       string
	Description string
	Link        string
	ImageURL    string
}

// UpdatePollInput carries only the fields the caller wants to change; nil
// means untouched. The mutation policy inspects the changed-field set.
type UpdatePollInput struct {
	Title          *string
	Description    *string
	StartDate      *int64
	EndDate        *int64
	Status         *domain.PollStatus
	Settings       *domain.Settings
	Ballot         []CreateQuestionInput
	WillSendEmails *bool
}

type PollService interface {
	Create(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, input CreatePollInput) (*domain.Poll, error)
	Get(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) (*domain.Poll, error)
	List(ctx context.Context, callerID uuid.UUID, callerRole domain.Role) ([]*domain.Poll, error)
	Update(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID, input UpdatePollInput, meta RequestMeta) (*domain.Poll, error)
	Delete(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) error
	AssignRole(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID, userID uuid.UUID, relation domain.PollRoleRelation) error
	RemoveRole(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID, userID uuid.UUID, relation domain.PollRoleRelation) error
}
