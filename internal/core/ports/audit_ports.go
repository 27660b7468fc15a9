package ports

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
)

type AuditRepository interface {
	Append(ctx context.Context, e *domain.AuditEvent) error
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.AuditEvent, error)
	// Exists matches events by type and poll; participantID and actorID
	// narrow the match when non-nil.
	Exists(ctx context.Context, pollID uuid.UUID, eventType domain.AuditEventType, participantID, actorID *uuid.UUID) (bool, error)
}

type AuditService interface {
	// Record appends an event while the poll is active. It is best-effort: a
	// failed write is logged and swallowed, never surfaced to the caller.
	Record(ctx context.Context, poll *domain.Poll, e domain.AuditEvent)
	List(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) ([]*domain.AuditEvent, error)
}
