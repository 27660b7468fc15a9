package services

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type auditService struct {
	auditRepo   ports.AuditRepository
	permissions ports.PermissionService
	pollRepo    ports.PollRepository
	clock       ports.Clock
	logger      *zap.Logger
}

func NewAuditService(auditRepo ports.AuditRepository, permissions ports.PermissionService, pollRepo ports.PollRepository, clock ports.Clock, logger *zap.Logger) ports.AuditService {
	return &auditService{
		auditRepo:   auditRepo,
		permissions: permissions,
		pollRepo:    pollRepo,
		clock:       clock,
		logger:      logger,
	}
}

// Record writes the event only while the poll is active. It is a best-effort
// side channel: a failed write is logged, never propagated, so it cannot fail
// the operation it accompanies.
func (s *auditService) Record(ctx context.Context, poll *domain.Poll, e domain.AuditEvent) {
	if poll.Status != domain.PollStatusActive {
		return
	}

	e.ID = uuid.New()
	e.PollID = poll.ID
	e.CreatedAt = s.clock.Now()

	if err := s.auditRepo.Append(ctx, &e); err != nil {
		s.logger.Error("failed to append audit event",
			zap.String("poll_id", poll.ID.String()),
			zap.String("event_type", string(e.EventType)),
			zap.Error(err))
	}
}

func (s *auditService) List(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) ([]*domain.AuditEvent, error) {
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, pollID)
	if err != nil {
		return nil, err
	}
	if !caps.CanAudit && !caps.CanManage {
		return nil, domain.ErrPermissionDenied
	}
	return s.auditRepo.ListByPoll(ctx, pollID)
}

// hasDelegationMarker reports whether an in-person delegation marker exists
// for the target participant.
func hasDelegationMarker(ctx context.Context, repo ports.AuditRepository, pollID, participantID uuid.UUID) (bool, error) {
	return repo.Exists(ctx, pollID, domain.EventMarkedInPersonVoted, &participantID, nil)
}

// delegationConsumed reports whether the (poll, participant, delegate) triple
// already produced an in-person vote.
func delegationConsumed(ctx context.Context, repo ports.AuditRepository, pollID, participantID, delegateID uuid.UUID) (bool, error) {
	return repo.Exists(ctx, pollID, domain.EventInPersonVoteCast, &participantID, &delegateID)
}
