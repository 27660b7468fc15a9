package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type voteService struct {
	pollRepo        ports.PollRepository
	participantRepo ports.ParticipantRepository
	voteRepo        ports.VoteRepository
	auditRepo       ports.AuditRepository
	userRepo        ports.UserRepository
	permissions     ports.PermissionService
	audit           ports.AuditService
	clock           ports.Clock
	logger          *zap.Logger
}

func NewVoteService(
	pollRepo ports.PollRepository,
	participantRepo ports.ParticipantRepository,
	voteRepo ports.VoteRepository,
	auditRepo ports.AuditRepository,
	userRepo ports.UserRepository,
	permissions ports.PermissionService,
	audit ports.AuditService,
	clock ports.Clock,
	logger *zap.Logger,
) ports.VoteService {
	return &voteService{
		pollRepo:        pollRepo,
		participantRepo: participantRepo,
		voteRepo:        voteRepo,
		auditRepo:       auditRepo,
		userRepo:        userRepo,
		permissions:     permissions,
		audit:           audit,
		clock:           clock,
		logger:          logger,
	}
}

// Authenticate resolves voting credentials to exactly one approved
// participant of the poll. Failures are deliberately uniform so callers
// cannot probe for account or token existence.
func (s *voteService) Authenticate(ctx context.Context, pollID uuid.UUID, input ports.AuthInput) (*domain.Participant, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	// Voting window first: a valid token against a draft or ended poll is
	// refused regardless of the authentication outcome.
	if err := s.checkVotingWindow(poll); err != nil {
		return nil, err
	}

	if input.Token != "" {
		return s.authenticateByToken(ctx, poll, input.Token)
	}
	return s.authenticateByCredentials(ctx, poll, input.Email, input.Password)
}

func (s *voteService) authenticateByToken(ctx context.Context, poll *domain.Poll, token string) (*domain.Participant, error) {
	participant, err := s.participantRepo.GetByToken(ctx, poll.ID, token)
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return nil, domain.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	if participant.Status != domain.ParticipantApproved {
		return nil, domain.ErrAuthenticationFailed
	}
	return participant, nil
}

func (s *voteService) authenticateByCredentials(ctx context.Context, poll *domain.Poll, email, password string) (*domain.Participant, error) {
	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrAuthenticationFailed
	}

	participant, err := s.participantRepo.GetByUser(ctx, poll.ID, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return nil, domain.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to resolve participant: %w", err)
	}
	if participant.Status != domain.ParticipantApproved {
		return nil, domain.ErrAuthenticationFailed
	}
	return participant, nil
}

func (s *voteService) Submit(ctx context.Context, input ports.SubmitVoteInput) error {
	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return err
	}

	now := s.clock.NowMillis()
	// A vote after the end date is rejected unconditionally, overriding every
	// other branch.
	if poll.Ended(now) {
		return domain.ErrPollEnded
	}
	if !poll.VotingOpen(now) {
		return domain.ErrPollNotActive
	}

	if err := ValidateVotePayload(poll.Ballot, input.Payload); err != nil {
		return err
	}

	if input.InPersonTargetID != nil {
		return s.submitInPerson(ctx, poll, input)
	}
	return s.submitDirect(ctx, poll, input)
}

// submitDirect accepts a vote only for the participant the presented token or
// credentials resolve to; the caller never names a participant directly.
func (s *voteService) submitDirect(ctx context.Context, poll *domain.Poll, input ports.SubmitVoteInput) error {
	var participant *domain.Participant
	var err error
	switch {
	case input.Auth.Token != "":
		participant, err = s.authenticateByToken(ctx, poll, input.Auth.Token)
	case input.Auth.Email != "":
		participant, err = s.authenticateByCredentials(ctx, poll, input.Auth.Email, input.Auth.Password)
	default:
		return domain.ErrAuthenticationFailed
	}
	if err != nil {
		return err
	}

	revote := participant.HasVoted
	if revote && !poll.Settings.AllowVoteChanges {
		return domain.ErrAlreadyVoted
	}

	// Token usage is tracked only for external invitees; user participants
	// authenticate with credentials. The token is consumed before any vote
	// row is written, so the loser of a concurrent race fails here with
	// nothing persisted.
	if !participant.IsUser {
		if participant.TokenUsed && !revote {
			return domain.ErrTokenUsed
		}
		if !participant.TokenUsed {
			if err := s.participantRepo.ConsumeToken(ctx, participant.ID); err != nil {
				return err
			}
		}
	}

	votes := s.buildVotes(poll, participant, input.Payload)
	if err := s.voteRepo.Replace(ctx, poll.ID, participant.ID, votes); err != nil {
		return fmt.Errorf("failed to store votes: %w", err)
	}

	if err := s.participantRepo.SetVoted(ctx, participant.ID); err != nil {
		return fmt.Errorf("failed to mark participant voted: %w", err)
	}

	eventType := domain.EventVoteCast
	if revote {
		eventType = domain.EventVoteChanged
	}
	s.audit.Record(ctx, poll, domain.AuditEvent{
		EventType:     eventType,
		ActorUserID:   participant.UserID,
		ParticipantID: &participant.ID,
		Meta:          map[string]any{"questions": len(input.Payload)},
		IPAddress:     input.Meta.IPAddress,
		UserAgent:     input.Meta.UserAgent,
	})
	return nil
}

// submitInPerson casts a vote on behalf of the target participant. The
// delegation must have been marked beforehand and is single-use per
// (poll, participant, delegate) triple; the delegate's own record is
// untouched.
func (s *voteService) submitInPerson(ctx context.Context, poll *domain.Poll, input ports.SubmitVoteInput) error {
	if !poll.Settings.AllowInPersonVoting {
		return domain.ErrPermissionDenied
	}
	if input.ActorUserID == nil {
		return domain.ErrPermissionDenied
	}
	delegateID := *input.ActorUserID

	target, err := s.participantRepo.GetByID(ctx, *input.InPersonTargetID)
	if err != nil {
		return err
	}
	if target.PollID != poll.ID {
		return domain.ErrParticipantNotFound
	}

	marked, err := hasDelegationMarker(ctx, s.auditRepo, poll.ID, target.ID)
	if err != nil {
		return fmt.Errorf("failed to check delegation marker: %w", err)
	}
	if !marked {
		return domain.ErrPermissionDenied
	}

	consumed, err := delegationConsumed(ctx, s.auditRepo, poll.ID, target.ID, delegateID)
	if err != nil {
		return fmt.Errorf("failed to check delegation use: %w", err)
	}
	if consumed {
		return domain.ErrDelegationUsed
	}

	if target.HasVoted && !poll.Settings.AllowVoteChanges {
		return domain.ErrAlreadyVoted
	}

	votes := s.buildVotes(poll, target, input.Payload)
	if err := s.voteRepo.Replace(ctx, poll.ID, target.ID, votes); err != nil {
		return fmt.Errorf("failed to store votes: %w", err)
	}
	if err := s.participantRepo.SetVoted(ctx, target.ID); err != nil {
		return fmt.Errorf("failed to mark participant voted: %w", err)
	}

	s.audit.Record(ctx, poll, domain.AuditEvent{
		EventType:     domain.EventInPersonVoteCast,
		ActorUserID:   &delegateID,
		ParticipantID: &target.ID,
		Meta:          map[string]any{"delegate_user_id": delegateID.String()},
		IPAddress:     input.Meta.IPAddress,
		UserAgent:     input.Meta.UserAgent,
	})
	return nil
}

// MarkInPersonVoter records delegation intent for a participant. Only callers
// who can manage the poll or its participants may mark.
func (s *voteService) MarkInPersonVoter(ctx context.Context, input ports.MarkInPersonInput) error {
	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return err
	}
	if !poll.Settings.AllowInPersonVoting {
		return domain.ErrPermissionDenied
	}
	// The marker lives in the audit trail, which only records for active
	// polls; marking anything else would silently drop the delegation.
	if poll.Status != domain.PollStatusActive {
		return domain.ErrPollNotActive
	}

	caps, err := s.permissions.Resolve(ctx, input.CallerID, input.CallerRole, input.PollID)
	if err != nil {
		return err
	}
	if !caps.CanManage && !caps.CanManageParticipants {
		return domain.ErrPermissionDenied
	}

	participant, err := s.participantRepo.GetByID(ctx, input.ParticipantID)
	if err != nil {
		return err
	}
	if participant.PollID != poll.ID {
		return domain.ErrParticipantNotFound
	}

	s.audit.Record(ctx, poll, domain.AuditEvent{
		EventType:     domain.EventMarkedInPersonVoted,
		ActorUserID:   &input.CallerID,
		ParticipantID: &participant.ID,
		IPAddress:     input.Meta.IPAddress,
		UserAgent:     input.Meta.UserAgent,
	})
	return nil
}

func (s *voteService) checkVotingWindow(poll *domain.Poll) error {
	now := s.clock.NowMillis()
	if poll.Ended(now) {
		return domain.ErrPollEnded
	}
	if !poll.VotingOpen(now) {
		return domain.ErrPollNotActive
	}
	return nil
}

// buildVotes materializes vote rows in ballot order, copying the vote weight
// from the participant at cast time.
func (s *voteService) buildVotes(poll *domain.Poll, participant *domain.Participant, payload domain.VotePayload) []*domain.Vote {
	now := s.clock.Now()
	var votes []*domain.Vote
	for _, q := range poll.Ballot {
		selected, ok := payload[q.ID]
		if !ok || len(selected) == 0 {
			continue
		}
		votes = append(votes, &domain.Vote{
			ID:              uuid.New(),
			PollID:          poll.ID,
			ParticipantID:   participant.ID,
			QuestionID:      q.ID,
			SelectedOptions: selected,
			VoteWeight:      participant.VoteWeight,
			CreatedAt:       now,
		})
	}
	return votes
}
