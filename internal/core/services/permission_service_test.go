package services

import (
	"context"
	"testing"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAdminGetsEverything(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, nil)
	admin := env.seedUser(t, domain.RoleAdmin, "pw")

	caps, err := env.permissions.Resolve(context.Background(), admin.ID, admin.Role, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AllCapabilities(), caps)
}

func TestResolveManagerCannotDelete(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, domain.RoleSubAdmin, "pw")
	poll := env.seedPoll(t, func(p *domain.Poll) { p.ManagerID = manager.ID })

	caps, err := env.permissions.Resolve(context.Background(), manager.ID, manager.Role, poll.ID)
	require.NoError(t, err)
	assert.True(t, caps.CanManage)
	assert.True(t, caps.CanEdit)
	assert.True(t, caps.CanAudit)
	assert.False(t, caps.CanDelete)
}

func TestResolveUnionsRelations(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, nil)
	user := env.seedUser(t, domain.RoleSubAdmin, "pw")
	env.assignRole(t, poll, user.ID, domain.RelationAuditor)
	env.assignRole(t, poll, user.ID, domain.RelationEditor)

	caps, err := env.permissions.Resolve(context.Background(), user.ID, user.Role, poll.ID)
	require.NoError(t, err)

	// Audit comes from the auditor grant, participant management from the
	// editor grant; holding both yields the union.
	assert.True(t, caps.CanAudit)
	assert.True(t, caps.CanEdit)
	assert.True(t, caps.CanManageParticipants)
	assert.False(t, caps.CanManage)
	assert.False(t, caps.CanDelete)
}

func TestResolveParticipantFollowsResultsSetting(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, domain.RoleUser, "pw")

	open := env.seedPoll(t, nil)
	env.seedInvitee(t, open, func(p *domain.Participant) {
		p.UserID = &user.ID
		p.IsUser = true
		p.Token = ""
	})
	caps, err := env.permissions.Resolve(context.Background(), user.ID, user.Role, open.ID)
	require.NoError(t, err)
	assert.True(t, caps.CanView)
	assert.True(t, caps.CanViewResults)

	closed := env.seedPoll(t, func(p *domain.Poll) { p.Settings.AllowResultsView = false })
	env.seedInvitee(t, closed, func(p *domain.Participant) {
		p.UserID = &user.ID
		p.IsUser = true
		p.Token = ""
	})
	caps, err = env.permissions.Resolve(context.Background(), user.ID, user.Role, closed.ID)
	require.NoError(t, err)
	assert.True(t, caps.CanView)
	assert.False(t, caps.CanViewResults)
}

func TestResolveStrangerGetsNothing(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, nil)

	caps, err := env.permissions.Resolve(context.Background(), uuid.New(), domain.RoleUser, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Capabilities{}, caps)
}

func TestResolveUnknownPoll(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.permissions.Resolve(context.Background(), uuid.New(), domain.RoleAdmin, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestTierResolution(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, domain.RoleSubAdmin, "pw")
	auditor := env.seedUser(t, domain.RoleSubAdmin, "pw")
	voter := env.seedUser(t, domain.RoleUser, "pw")
	poll := env.seedPoll(t, func(p *domain.Poll) { p.ManagerID = manager.ID })
	env.assignRole(t, poll, auditor.ID, domain.RelationAuditor)
	participant := env.seedInvitee(t, poll, func(p *domain.Participant) {
		p.UserID = &voter.ID
		p.IsUser = true
		p.Token = ""
	})

	tier, _, err := env.permissions.Tier(context.Background(), uuid.New(), domain.RoleAdmin, poll)
	require.NoError(t, err)
	assert.Equal(t, domain.TierAdmin, tier)

	tier, _, err = env.permissions.Tier(context.Background(), manager.ID, manager.Role, poll)
	require.NoError(t, err)
	assert.Equal(t, domain.TierManager, tier)

	tier, _, err = env.permissions.Tier(context.Background(), auditor.ID, auditor.Role, poll)
	require.NoError(t, err)
	assert.Equal(t, domain.TierAuditor, tier)

	tier, viewer, err := env.permissions.Tier(context.Background(), voter.ID, voter.Role, poll)
	require.NoError(t, err)
	assert.Equal(t, domain.TierParticipant, tier)
	require.NotNil(t, viewer)
	assert.Equal(t, participant.ID, viewer.ID)

	tier, _, err = env.permissions.Tier(context.Background(), uuid.New(), domain.RoleUser, poll)
	require.NoError(t, err)
	assert.Equal(t, domain.TierNone, tier)
}
