package services

import (
	"context"
	"fmt"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"go.uber.org/zap"
)

type invitationService struct {
	pollRepo        ports.PollRepository
	participantRepo ports.ParticipantRepository
	mailer          ports.Mailer
	clock           ports.Clock
	voteURLBase     string
	logger          *zap.Logger
}

func NewInvitationService(
	pollRepo ports.PollRepository,
	participantRepo ports.ParticipantRepository,
	mailer ports.Mailer,
	clock ports.Clock,
	voteURLBase string,
	logger *zap.Logger,
) ports.InvitationService {
	return &invitationService{
		pollRepo:        pollRepo,
		participantRepo: participantRepo,
		mailer:          mailer,
		clock:           clock,
		voteURLBase:     voteURLBase,
		logger:          logger,
	}
}

// SendPendingInvitations walks the active mailable polls and invites every
// approved participant that has not been mailed yet. A failed send is logged
// and skipped so one bad address cannot stall the run.
func (s *invitationService) SendPendingInvitations(ctx context.Context) error {
	polls, err := s.pollRepo.ListActiveMailable(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mailable polls: %w", err)
	}

	for _, poll := range polls {
		participants, err := s.participantRepo.ListByPoll(ctx, poll.ID)
		if err != nil {
			s.logger.Error("failed to list participants",
				zap.String("poll_id", poll.ID.String()), zap.Error(err))
			continue
		}

		for _, p := range participants {
			if p.Status != domain.ParticipantApproved || p.LastEmailSentAt != nil {
				continue
			}
			if err := s.sendInvitation(ctx, poll, p); err != nil {
				s.logger.Error("failed to send invitation",
					zap.String("poll_id", poll.ID.String()),
					zap.String("participant_id", p.ID.String()),
					zap.Error(err))
				continue
			}

			now := s.clock.Now()
			p.LastEmailSentAt = &now
			if err := s.participantRepo.Update(ctx, p); err != nil {
				s.logger.Error("failed to record invitation time",
					zap.String("participant_id", p.ID.String()), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *invitationService) sendInvitation(ctx context.Context, poll *domain.Poll, p *domain.Participant) error {
	voteURL := fmt.Sprintf("%s/polls/%s", s.voteURLBase, poll.ID)
	if !p.IsUser {
		voteURL = fmt.Sprintf("%s?token=%s", voteURL, p.Token)
	}

	msg := ports.MailMessage{
		To:      p.Email,
		Subject: fmt.Sprintf("You are invited to vote: %s", poll.Title),
		Body:    fmt.Sprintf("Hello %s,\n\nyou have been enrolled in the poll %q.\nCast your vote at %s\n", p.Name, poll.Title, voteURL),
		Variables: map[string]string{
			"poll_title": poll.Title,
			"vote_url":   voteURL,
		},
	}
	return s.mailer.Send(ctx, msg)
}
