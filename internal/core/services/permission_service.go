package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
)

type permissionService struct {
	pollRepo        ports.PollRepository
	roleRepo        ports.RoleRepository
	participantRepo ports.ParticipantRepository
}

func NewPermissionService(pollRepo ports.PollRepository, roleRepo ports.RoleRepository, participantRepo ports.ParticipantRepository) ports.PermissionService {
	return &permissionService{
		pollRepo:        pollRepo,
		roleRepo:        roleRepo,
		participantRepo: participantRepo,
	}
}

func (s *permissionService) Resolve(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) (domain.Capabilities, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return domain.Capabilities{}, err
	}
	return s.resolve(ctx, callerID, callerRole, poll)
}

func (s *permissionService) resolve(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, poll *domain.Poll) (domain.Capabilities, error) {
	if callerRole == domain.RoleAdmin {
		return domain.AllCapabilities(), nil
	}
	if poll.ManagerID == callerID {
		return domain.ManagerCapabilities(), nil
	}

	grants, err := s.relationGrants(ctx, callerID, poll)
	if err != nil {
		return domain.Capabilities{}, err
	}

	var caps domain.Capabilities
	for _, g := range grants {
		caps = caps.Union(g)
	}
	return caps, nil
}

// relationGrants collects one capability set per matched poll relation. The
// caller may hold several relations at once; the resolver unions them.
func (s *permissionService) relationGrants(ctx context.Context, callerID uuid.UUID, poll *domain.Poll) ([]domain.Capabilities, error) {
	var grants []domain.Capabilities

	isAuditor, err := s.roleRepo.Has(ctx, poll.ID, callerID, domain.RelationAuditor)
	if err != nil {
		return nil, fmt.Errorf("failed to check auditor relation: %w", err)
	}
	if isAuditor {
		grants = append(grants, domain.AuditorCapabilities())
	}

	isEditor, err := s.roleRepo.Has(ctx, poll.ID, callerID, domain.RelationEditor)
	if err != nil {
		return nil, fmt.Errorf("failed to check editor relation: %w", err)
	}
	if isEditor {
		grants = append(grants, domain.EditorCapabilities())
	}

	participant, err := s.participantRepo.GetByUser(ctx, poll.ID, callerID)
	if err == nil && participant.Status == domain.ParticipantApproved {
		grants = append(grants, domain.ParticipantCapabilities(poll.Settings))
	} else if err != nil && !errors.Is(err, domain.ErrParticipantNotFound) {
		return nil, fmt.Errorf("failed to check participant relation: %w", err)
	}

	return grants, nil
}

func (s *permissionService) Tier(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, poll *domain.Poll) (domain.AccessTier, *domain.Participant, error) {
	if callerRole == domain.RoleAdmin {
		return domain.TierAdmin, nil, nil
	}
	if poll.ManagerID == callerID {
		return domain.TierManager, nil, nil
	}

	isAuditor, err := s.roleRepo.Has(ctx, poll.ID, callerID, domain.RelationAuditor)
	if err != nil {
		return domain.TierNone, nil, fmt.Errorf("failed to check auditor relation: %w", err)
	}
	if isAuditor {
		return domain.TierAuditor, nil, nil
	}

	isEditor, err := s.roleRepo.Has(ctx, poll.ID, callerID, domain.RelationEditor)
	if err != nil {
		return domain.TierNone, nil, fmt.Errorf("failed to check editor relation: %w", err)
	}
	if isEditor {
		return domain.TierEditor, nil, nil
	}

	participant, err := s.participantRepo.GetByUser(ctx, poll.ID, callerID)
	if err == nil && participant.Status == domain.ParticipantApproved {
		return domain.TierParticipant, participant, nil
	}
	if err != nil && !errors.Is(err, domain.ErrParticipantNotFound) {
		return domain.TierNone, nil, fmt.Errorf("failed to check participant relation: %w", err)
	}

	return domain.TierNone, nil, nil
}
