package services

import (
	"context"
	"testing"
	"time"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// castVote submits a direct vote for the given invitee and option index.
func castVote(t *testing.T, env *testEnv, poll *domain.Poll, p *domain.Participant, optionIndex int) {
	t.Helper()
	require.NoError(t, env.votes.Submit(context.Background(), ports.SubmitVoteInput{
		PollID:  poll.ID,
		Auth:    ports.AuthInput{Token: p.Token},
		Payload: singleChoice(poll, optionIndex),
	}))
}

func TestComputeWeightedTabulation(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, func(p *domain.Poll) {
		p.Settings.VoteWeightEnabled = true
	})

	// Three voters with weights 1, 1 and 2. Two pick the first option, the
	// weighted one picks the second.
	v1 := env.seedInvitee(t, poll, nil)
	v2 := env.seedInvitee(t, poll, nil)
	v3 := env.seedInvitee(t, poll, func(p *domain.Participant) { p.VoteWeight = 2.0 })
	castVote(t, env, poll, v1, 0)
	castVote(t, env, poll, v2, 0)
	castVote(t, env, poll, v3, 1)

	view, err := env.results.Compute(context.Background(), poll, domain.TierManager, nil)
	require.NoError(t, err)

	require.Len(t, view.Questions, 1)
	q := view.Questions[0]
	assert.Equal(t, int64(3), q.TotalVotes)
	assert.Equal(t, 4.0, q.TotalWeight)

	require.Len(t, q.Options, 2)
	first, second := q.Options[0], q.Options[1]
	assert.Equal(t, int64(2), first.VoteCount)
	assert.Equal(t, 2.0, first.WeightedVoteCount)
	assert.Equal(t, 66.67, first.Percentage)
	assert.Equal(t, 50.0, first.WeightedPercentage)
	assert.Equal(t, int64(1), second.VoteCount)
	assert.Equal(t, 2.0, second.WeightedVoteCount)
	assert.Equal(t, 33.33, second.Percentage)
	assert.Equal(t, 50.0, second.WeightedPercentage)

	require.NotNil(t, view.Statistics.TotalVoteWeight)
	assert.Equal(t, 4.0, *view.Statistics.TotalVoteWeight)
	assert.Equal(t, int64(3), view.Statistics.TotalParticipants)
	assert.Equal(t, int64(3), view.Statistics.VotedParticipants)
	assert.Equal(t, 100.0, view.Statistics.ParticipationRate)
}

func TestComputeHidesBreakdownBeforeEnd(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, nil)
	voter := env.seedInvitee(t, poll, nil)
	castVote(t, env, poll, voter, 0)

	view, err := env.results.Compute(context.Background(), poll, domain.TierParticipant, voter)
	require.NoError(t, err)

	assert.False(t, view.PollEnded)
	assert.False(t, view.Permissions.ShowResultsBreakdown)
	assert.False(t, view.Permissions.ShowVoteCounts)
	require.Len(t, view.Questions, 1)
	assert.Empty(t, view.Questions[0].Options)
	assert.Zero(t, view.Questions[0].TotalVotes)
}

func TestComputePrivilegedTiersSeeCountsBeforeEnd(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, nil)
	voter := env.seedInvitee(t, poll, nil)
	castVote(t, env, poll, voter, 0)

	view, err := env.results.Compute(context.Background(), poll, domain.TierAuditor, nil)
	require.NoError(t, err)

	assert.True(t, view.Permissions.ShowVoteCounts)
	assert.True(t, view.Permissions.ShowResultsBreakdown)
	require.Len(t, view.Questions[0].Options, 2)
	assert.Equal(t, int64(1), view.Questions[0].Options[0].VoteCount)
}

func TestComputeBreakdownOpensAfterEnd(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, nil)
	voter := env.seedInvitee(t, poll, nil)
	castVote(t, env, poll, voter, 0)

	// Move past the end date and recompute as a plain participant.
	poll.EndDate = testTime.Add(-time.Minute).UnixMilli()

	view, err := env.results.Compute(context.Background(), poll, domain.TierParticipant, voter)
	require.NoError(t, err)
	assert.True(t, view.PollEnded)
	assert.True(t, view.Permissions.ShowVoteCounts)
	assert.True(t, view.Permissions.ShowResultsBreakdown)
	assert.Equal(t, int64(1), view.Questions[0].Options[0].VoteCount)
}

func TestComputeParticipantRosterRedaction(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, nil)
	voted := env.seedInvitee(t, poll, func(p *domain.Participant) { p.Name = "Jane Doe" })
	env.seedInvitee(t, poll, func(p *domain.Participant) { p.Name = "Silent Sam" })
	castVote(t, env, poll, voted, 0)

	// Anonymous default: only voters appear, without identity or weight.
	// Raw ids never reach the participant view in any mode.
	view, err := env.results.Compute(context.Background(), poll, domain.TierParticipant, voted)
	require.NoError(t, err)
	require.Len(t, view.Participants, 1)
	assert.Nil(t, view.Participants[0].ID)
	assert.Empty(t, view.Participants[0].Name)
	assert.Empty(t, view.Participants[0].Email)
	assert.Nil(t, view.Participants[0].VoteWeight)

	// Initials mode masks the name.
	poll.Settings.ShowParticipantInitials = true
	view, err = env.results.Compute(context.Background(), poll, domain.TierParticipant, voted)
	require.NoError(t, err)
	assert.Equal(t, "J. D.", view.Participants[0].Name)

	// Full names take precedence over initials.
	poll.Settings.ShowParticipantNames = true
	view, err = env.results.Compute(context.Background(), poll, domain.TierParticipant, voted)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", view.Participants[0].Name)
	assert.Nil(t, view.Participants[0].ID)
}

func TestComputeAnonymousWeightRequiresWeightedPoll(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, nil)
	voter := env.seedInvitee(t, poll, func(p *domain.Participant) { p.VoteWeight = 3.0 })
	castVote(t, env, poll, voter, 0)

	view, err := env.results.Compute(context.Background(), poll, domain.TierParticipant, voter)
	require.NoError(t, err)
	assert.Nil(t, view.Participants[0].VoteWeight)

	poll.Settings.VoteWeightEnabled = true
	view, err = env.results.Compute(context.Background(), poll, domain.TierParticipant, voter)
	require.NoError(t, err)
	require.NotNil(t, view.Participants[0].VoteWeight)
	assert.Equal(t, 3.0, *view.Participants[0].VoteWeight)
}

func TestComputeEditorSeesFullRoster(t *testing.T) {
	env := newTestEnv(t)
	poll := env.seedPoll(t, nil)
	voted := env.seedInvitee(t, poll, nil)
	env.seedInvitee(t, poll, nil)
	castVote(t, env, poll, voted, 0)

	view, err := env.results.Compute(context.Background(), poll, domain.TierEditor, nil)
	require.NoError(t, err)

	// Editors see everyone, including non-voters, with identity intact.
	require.Len(t, view.Participants, 2)
	for _, pr := range view.Participants {
		assert.NotNil(t, pr.ID)
		assert.NotEmpty(t, pr.Email)
		assert.NotNil(t, pr.VoteWeight)
	}
}
