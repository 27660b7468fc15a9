package ports

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
)

type RoleRepository interface {
	Add(ctx context.Context, a *domain.PollRoleAssignment) error
	Remove(ctx context.Context, pollID, userID uuid.UUID, relation domain.PollRoleRelation) error
	Has(ctx context.Context, pollID, userID uuid.UUID, relation domain.PollRoleRelation) (bool, error)
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.PollRoleAssignment, error)
}
