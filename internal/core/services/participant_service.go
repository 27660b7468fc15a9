package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type participantService struct {
	pollRepo        ports.PollRepository
	participantRepo ports.ParticipantRepository
	userRepo        ports.UserRepository
	permissions     ports.PermissionService
	audit           ports.AuditService
	tokens          ports.TokenSource
	clock           ports.Clock
	logger          *zap.Logger
}

func NewParticipantService(
	pollRepo ports.PollRepository,
	participantRepo ports.ParticipantRepository,
	userRepo ports.UserRepository,
	permissions ports.PermissionService,
	audit ports.AuditService,
	tokens ports.TokenSource,
	clock ports.Clock,
	logger *zap.Logger,
) ports.ParticipantService {
	return &participantService{
		pollRepo:        pollRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		permissions:     permissions,
		audit:           audit,
		tokens:          tokens,
		clock:           clock,
		logger:          logger,
	}
}

// Enroll adds a voter to the poll roster. An email matching a registered user
// links the participant to that account; anyone else becomes an external
// invitee with a voting token. Enrollment auto-approves.
func (s *participantService) Enroll(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, input ports.EnrollParticipantInput, meta ports.RequestMeta) (*domain.Participant, error) {
	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, input.PollID)
	if err != nil {
		return nil, err
	}
	if !caps.CanManageParticipants {
		return nil, domain.ErrPermissionDenied
	}

	email := domain.NormalizeEmail(input.Email)
	if email == "" {
		return nil, errors.New("email is required")
	}

	weight := input.VoteWeight
	if weight <= 0 {
		weight = 1.0
	}

	participant := &domain.Participant{
		ID:         uuid.New(),
		PollID:     input.PollID,
		Email:      email,
		Name:       input.Name,
		VoteWeight: weight,
		Status:     domain.ParticipantApproved,
		CreatedAt:  s.clock.Now(),
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		participant.IsUser = true
		participant.UserID = &user.ID
		if participant.Name == "" {
			participant.Name = user.Name
		}
	case errors.Is(err, domain.ErrUserNotFound):
		token, err := s.tokens.NewToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		participant.Token = token
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, poll, domain.AuditEvent{
		EventType:     domain.EventParticipantAdded,
		ActorUserID:   &callerID,
		ParticipantID: &participant.ID,
		Meta:          map[string]any{"email": email, "is_user": participant.IsUser},
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})
	return participant, nil
}

func (s *participantService) List(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) ([]*domain.Participant, error) {
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, pollID)
	if err != nil {
		return nil, err
	}
	if !caps.CanViewParticipants {
		return nil, domain.ErrPermissionDenied
	}
	return s.participantRepo.ListByPoll(ctx, pollID)
}

func (s *participantService) Remove(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID, participantID uuid.UUID, meta ports.RequestMeta) error {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return err
	}
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, pollID)
	if err != nil {
		return err
	}
	if !caps.CanManageParticipants {
		return domain.ErrPermissionDenied
	}

	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return err
	}
	if participant.PollID != pollID {
		return domain.ErrParticipantNotFound
	}

	if err := s.participantRepo.Delete(ctx, participantID); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	s.audit.Record(ctx, poll, domain.AuditEvent{
		EventType:     domain.EventParticipantRemoved,
		ActorUserID:   &callerID,
		ParticipantID: &participantID,
		Meta:          map[string]any{"email": participant.Email},
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})
	return nil
}

// RegenerateToken revokes an external participant's token and issues a fresh
// one; the old token stops authenticating immediately.
func (s *participantService) RegenerateToken(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID, participantID uuid.UUID, meta ports.RequestMeta) (*domain.Participant, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, pollID)
	if err != nil {
		return nil, err
	}
	if !caps.CanManageParticipants {
		return nil, domain.ErrPermissionDenied
	}

	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if participant.PollID != pollID {
		return nil, domain.ErrParticipantNotFound
	}
	if participant.IsUser {
		return nil, errors.New("user participants have no token")
	}

	token, err := s.tokens.NewToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.clock.Now()
	participant.Token = token
	participant.TokenUsed = false
	participant.TokenViewed = false
	participant.TokenLastRevokedAt = &now

	if err := s.participantRepo.Update(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to store new token: %w", err)
	}

	s.audit.Record(ctx, poll, domain.AuditEvent{
		EventType:     domain.EventTokenRegenerated,
		ActorUserID:   &callerID,
		ParticipantID: &participantID,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})
	return participant, nil
}

func (s *participantService) MarkTokenViewed(ctx context.Context, pollID uuid.UUID, token string) error {
	participant, err := s.participantRepo.GetByToken(ctx, pollID, token)
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return domain.ErrAuthenticationFailed
		}
		return err
	}
	if participant.TokenViewed {
		return nil
	}
	participant.TokenViewed = true
	return s.participantRepo.Update(ctx, participant)
}
