package ports

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
)

type PermissionService interface {
	// Resolve computes the capability set for a (caller, poll) pair. A missing
	// poll surfaces domain.ErrPollNotFound, not a permission denial.
	Resolve(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) (domain.Capabilities, error)
	// Tier maps the caller onto the coarse access category used by results
	// redaction; the matched participant is returned for participant-tier
	// viewers.
	Tier(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, poll *domain.Poll) (domain.AccessTier, *domain.Participant, error)
}
