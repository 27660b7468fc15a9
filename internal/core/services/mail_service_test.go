package services

import (
	"context"
	"errors"
	"testing"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMailer struct {
	sent    []ports.MailMessage
	failFor string
}

func (m *recordingMailer) Send(_ context.Context, msg ports.MailMessage) error {
	if msg.To == m.failFor {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestSendPendingInvitations(t *testing.T) {
	env := newTestEnv(t)
	mailer := &recordingMailer{}
	invitations := NewInvitationService(env.store.Polls(), env.store.Participants(), mailer, env.clock, "https://vote.example.com", zap.NewNop())

	mailable := env.seedPoll(t, func(p *domain.Poll) { p.WillSendEmails = true })
	silent := env.seedPoll(t, nil)
	fresh := env.seedInvitee(t, mailable, nil)
	env.seedInvitee(t, mailable, func(p *domain.Participant) { p.LastEmailSentAt = &testTime })
	env.seedInvitee(t, silent, nil)

	require.NoError(t, invitations.SendPendingInvitations(context.Background()))

	// Only the not-yet-mailed invitee of the mailable poll gets a message,
	// carrying their voting token in the link.
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, fresh.Email, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, "token="+fresh.Token)

	stored, err := env.store.Participants().GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastEmailSentAt)

	// A second run mails nobody.
	require.NoError(t, invitations.SendPendingInvitations(context.Background()))
	assert.Len(t, mailer.sent, 1)
}

func TestSendPendingInvitationsSkipsFailures(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, func(p *domain.Poll) { p.WillSendEmails = true })
	bad := env.seedInvitee(t, poll, func(p *domain.Participant) { p.Email = "bad@example.com" })
	good := env.seedInvitee(t, poll, nil)

	mailer := &recordingMailer{failFor: bad.Email}
	invitations := NewInvitationService(env.store.Polls(), env.store.Participants(), mailer, env.clock, "https://vote.example.com", zap.NewNop())

	require.NoError(t, invitations.SendPendingInvitations(context.Background()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, good.Email, mailer.sent[0].To)

	// The failed invitee stays pending for the next run.
	stored, err := env.store.Participants().GetByID(context.Background(), bad.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastEmailSentAt)
}
