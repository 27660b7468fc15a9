package services

import (
	"context"
	"testing"
	"time"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndVerify(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, domain.RoleSubAdmin, "hunter2")

	token, got, err := env.sessions.Login(context.Background(), user.Email, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, token)

	userID, role, err := env.sessions.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, domain.RoleSubAdmin, role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, domain.RoleUser, "hunter2")

	_, _, err := env.sessions.Login(context.Background(), user.Email, "wrong")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)

	_, _, err = env.sessions.Login(context.Background(), "ghost@example.com", "hunter2")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

// Expiry follows the injected clock on both sides: a token minted now is
// refused by a verifier whose clock sits past the TTL.
func TestVerifyRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, domain.RoleSubAdmin, "hunter2")

	token, _, err := env.sessions.Login(context.Background(), user.Email, "hunter2")
	require.NoError(t, err)

	later := NewSessionService(env.store.Users(), fixedClock{t: testTime.Add(time.Hour)}, "test-secret")
	_, _, err = later.Verify(token)
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, domain.RoleUser, "hunter2")

	token, _, err := env.sessions.Login(context.Background(), user.Email, "hunter2")
	require.NoError(t, err)

	_, _, err = env.sessions.Verify(token + "x")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)

	_, _, err = env.sessions.Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}
