package integration

import (
	"context"
	"testing"
	"time"

	"github.com/evoteadm/evote/internal/adapters/repository/postgres"
	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (app *TestApp) seedPollRow(t *testing.T) *domain.Poll {
	t.Helper()

	managerID, _ := app.createUser(t, domain.RoleSubAdmin)
	now := time.Now()
	poll := &domain.Poll{
		ID:          uuid.New(),
		Title:       "Repository round trip",
		StartDate:   now.Add(-time.Hour).UnixMilli(),
		EndDate:     now.Add(time.Hour).UnixMilli(),
		Status:      domain.PollStatusActive,
		ManagerID:   managerID,
		CreatedByID: managerID,
		Settings:    domain.DefaultSettings(),
		Ballot: []domain.Question{{
			ID:           uuid.New(),
			Title:        "Chair",
			MinSelection: 1,
			MaxSelection: 1,
			Options:      []domain.Option{{ID: uuid.New(), Title: "A"}, {ID: uuid.New(), Title: "B"}},
		}},
		CreatedAt: now,
	}
	require.NoError(t, postgres.NewPollRepository(app.DB).Save(context.Background(), poll))
	return poll
}

func TestPollRepositoryRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	repo := postgres.NewPollRepository(app.DB)
	poll := app.seedPollRow(t)

	got, err := repo.GetByID(context.Background(), poll.ID)
	require.NoError(t, err)

	// The JSONB documents survive the round trip intact.
	assert.Equal(t, poll.Title, got.Title)
	assert.Equal(t, poll.Settings, got.Settings)
	require.Len(t, got.Ballot, 1)
	assert.Equal(t, poll.Ballot[0].ID, got.Ballot[0].ID)
	assert.Equal(t, poll.Ballot[0].Options, got.Ballot[0].Options)

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestParticipantRepositoryTokenLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	repo := postgres.NewParticipantRepository(app.DB)
	poll := app.seedPollRow(t)

	p := &domain.Participant{
		ID:         uuid.New(),
		PollID:     poll.ID,
		Email:      "invitee@example.com",
		Name:       "Jane Doe",
		Token:      "secret-token",
		VoteWeight: 1.0,
		Status:     domain.ParticipantApproved,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), p))

	// The poll-scoped email uniqueness surfaces as the domain sentinel.
	dup := *p
	dup.ID = uuid.New()
	dup.Token = "other-token"
	assert.ErrorIs(t, repo.Create(context.Background(), &dup), domain.ErrDuplicateParticipant)

	got, err := repo.GetByToken(context.Background(), poll.ID, "secret-token")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	// ConsumeToken is compare-and-swap: the second consumer loses.
	require.NoError(t, repo.ConsumeToken(context.Background(), p.ID))
	assert.ErrorIs(t, repo.ConsumeToken(context.Background(), p.ID), domain.ErrTokenUsed)
}

func TestVoteRepositoryReplace(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	poll := app.seedPollRow(t)
	participantRepo := postgres.NewParticipantRepository(app.DB)
	voteRepo := postgres.NewVoteRepository(app.DB)

	p := &domain.Participant{
		ID:         uuid.New(),
		PollID:     poll.ID,
		Email:      "voter@example.com",
		VoteWeight: 2.0,
		Status:     domain.ParticipantApproved,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, participantRepo.Create(context.Background(), p))

	question := poll.Ballot[0]
	makeVote := func(optionIndex int) []*domain.Vote {
		return []*domain.Vote{{
			ID:              uuid.New(),
			PollID:          poll.ID,
			ParticipantID:   p.ID,
			QuestionID:      question.ID,
			SelectedOptions: []uuid.UUID{question.Options[optionIndex].ID},
			VoteWeight:      p.VoteWeight,
			CreatedAt:       time.Now(),
		}}
	}

	require.NoError(t, voteRepo.Replace(context.Background(), poll.ID, p.ID, makeVote(0)))
	require.NoError(t, voteRepo.Replace(context.Background(), poll.ID, p.ID, makeVote(1)))

	votes, err := voteRepo.ListByParticipant(context.Background(), poll.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, []uuid.UUID{question.Options[1].ID}, votes[0].SelectedOptions)
	assert.Equal(t, 2.0, votes[0].VoteWeight)
}
