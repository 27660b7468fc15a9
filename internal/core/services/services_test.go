package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/evoteadm/evote/internal/adapters/repository/memory"
	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var testTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time   { return c.t }
func (c fixedClock) NowMillis() int64 { return c.t.UnixMilli() }

type stubTokens struct{ n int }

func (s *stubTokens) NewToken() (string, error) {
	s.n++
	return fmt.Sprintf("token-%d", s.n), nil
}

type testEnv struct {
	store        *memory.Store
	clock        fixedClock
	tokens       *stubTokens
	permissions  ports.PermissionService
	audit        ports.AuditService
	polls        ports.PollService
	participants ports.ParticipantService
	votes        ports.VoteService
	results      ports.ResultsService
	sessions     ports.SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	clock := fixedClock{t: testTime}
	tokens := &stubTokens{}
	logger := zap.NewNop()

	permissions := NewPermissionService(store.Polls(), store.Roles(), store.Participants())
	audit := NewAuditService(store.Audit(), permissions, store.Polls(), clock, logger)

	return &testEnv{
		store:        store,
		clock:        clock,
		tokens:       tokens,
		permissions:  permissions,
		audit:        audit,
		polls:        NewPollService(store.Polls(), store.Users(), store.Roles(), permissions, audit, clock, logger),
		participants: NewParticipantService(store.Polls(), store.Participants(), store.Users(), permissions, audit, tokens, clock, logger),
		votes:        NewVoteService(store.Polls(), store.Participants(), store.Votes(), store.Audit(), store.Users(), permissions, audit, clock, logger),
		results:      NewResultsService(store.Participants(), store.Votes(), clock, logger),
		sessions:     NewSessionService(store.Users(), clock, "test-secret"),
	}
}

func testBallot() []domain.Question {
	return []domain.Question{{
		ID:           uuid.New(),
		Title:        "Board chair",
		MinSelection: 1,
		MaxSelection: 1,
		Options: []domain.Option{
			{ID: uuid.New(), Title: "Alice"},
			{ID: uuid.New(), Title: "Bob"},
		},
	}}
}

// seedPoll stores an active poll whose voting window is currently open.
func (e *testEnv) seedPoll(t *testing.T, mutate func(*domain.Poll)) *domain.Poll {
	t.Helper()
	poll := &domain.Poll{
		ID:          uuid.New(),
		Title:       "Annual general meeting",
		StartDate:   testTime.Add(-time.Hour).UnixMilli(),
		EndDate:     testTime.Add(time.Hour).UnixMilli(),
		Status:      domain.PollStatusActive,
		ManagerID:   uuid.New(),
		CreatedByID: uuid.New(),
		Settings:    domain.DefaultSettings(),
		Ballot:      testBallot(),
		CreatedAt:   testTime,
	}
	if mutate != nil {
		mutate(poll)
	}
	require.NoError(t, e.store.Polls().Save(context.Background(), poll))
	return poll
}

// seedInvitee stores an approved external participant holding a voting token.
func (e *testEnv) seedInvitee(t *testing.T, poll *domain.Poll, mutate func(*domain.Participant)) *domain.Participant {
	t.Helper()
	p := &domain.Participant{
		ID:         uuid.New(),
		PollID:     poll.ID,
		Email:      fmt.Sprintf("voter-%s@example.com", uuid.New()),
		Name:       "Jane Doe",
		Token:      fmt.Sprintf("seed-%s", uuid.New()),
		VoteWeight: 1.0,
		Status:     domain.ParticipantApproved,
		CreatedAt:  testTime,
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, e.store.Participants().Create(context.Background(), p))
	return p
}

func (e *testEnv) seedUser(t *testing.T, role domain.Role, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("user-%s@example.com", uuid.New()),
		Name:         "Sam Smith",
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    testTime,
	}
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

func (e *testEnv) assignRole(t *testing.T, poll *domain.Poll, userID uuid.UUID, relation domain.PollRoleRelation) {
	t.Helper()
	require.NoError(t, e.store.Roles().Add(context.Background(), &domain.PollRoleAssignment{
		PollID:    poll.ID,
		UserID:    userID,
		Relation:  relation,
		CreatedAt: testTime,
	}))
}

func singleChoice(poll *domain.Poll, optionIndex int) domain.VotePayload {
	q := poll.Ballot[0]
	return domain.VotePayload{q.ID: {q.Options[optionIndex].ID}}
}
