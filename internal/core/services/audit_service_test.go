package services

import (
	"context"
	"testing"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOnlyWhileActive(t *testing.T) {
	env := newTestEnv(t)
	active := env.seedPoll(t, nil)
	draft := env.seedPoll(t, func(p *domain.Poll) { p.Status = domain.PollStatusDraft })

	env.audit.Record(context.Background(), active, domain.AuditEvent{EventType: domain.EventPollUpdated})
	env.audit.Record(context.Background(), draft, domain.AuditEvent{EventType: domain.EventPollUpdated})

	events, err := env.store.Audit().ListByPoll(context.Background(), active.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, active.ID, events[0].PollID)
	assert.False(t, events[0].CreatedAt.IsZero())

	events, err = env.store.Audit().ListByPoll(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListRequiresAuditRights(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, domain.RoleSubAdmin, "pw")
	auditor := env.seedUser(t, domain.RoleSubAdmin, "pw")
	editor := env.seedUser(t, domain.RoleSubAdmin, "pw")
	poll := env.seedPoll(t, func(p *domain.Poll) { p.ManagerID = manager.ID })
	env.assignRole(t, poll, auditor.ID, domain.RelationAuditor)
	env.assignRole(t, poll, editor.ID, domain.RelationEditor)
	env.audit.Record(context.Background(), poll, domain.AuditEvent{EventType: domain.EventPollUpdated})

	events, err := env.audit.List(context.Background(), auditor.ID, auditor.Role, poll.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = env.audit.List(context.Background(), manager.ID, manager.Role, poll.ID)
	assert.NoError(t, err)

	// Editors may change the poll but not read its audit trail.
	_, err = env.audit.List(context.Background(), editor.ID, editor.Role, poll.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}
