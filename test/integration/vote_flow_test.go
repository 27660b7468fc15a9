package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (app *TestApp) doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}
	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (app *TestApp) createActivePoll(t *testing.T, token string, settings *domain.Settings) domain.Poll {
	t.Helper()

	now := time.Now()
	createPayload := map[string]any{
		"title":      "Board election",
		"start_date": now.Add(-time.Hour).UnixMilli(),
		"end_date":   now.Add(time.Hour).UnixMilli(),
		"ballot": []map[string]any{{
			"title":   "Who should chair the board?",
			"options": []map[string]any{{"title": "Alice"}, {"title": "Bob"}},
		}},
	}
	if settings != nil {
		createPayload["settings"] = settings
	}

	resp := app.doJSON(t, "POST", app.Server.URL+"/api/polls", token, createPayload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	poll := decodeBody[domain.Poll](t, resp)
	require.NotEqual(t, uuid.Nil, poll.ID)
	require.Equal(t, domain.PollStatusDraft, poll.Status)

	resp = app.doJSON(t, "PATCH", fmt.Sprintf("%s/api/polls/%s", app.Server.URL, poll.ID), token,
		map[string]any{"status": "active"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[domain.Poll](t, resp)
}

// enrollInvitee adds an external participant and reads the generated voting
// token straight from the database, as the enrollment response never echoes it.
func (app *TestApp) enrollInvitee(t *testing.T, token string, pollID uuid.UUID, email string) (uuid.UUID, string) {
	t.Helper()

	resp := app.doJSON(t, "POST", fmt.Sprintf("%s/api/polls/%s/participants", app.Server.URL, pollID), token,
		map[string]any{"email": email, "name": "Jane Doe"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	participant := decodeBody[domain.Participant](t, resp)

	var voteToken string
	require.NoError(t, app.DB.QueryRow("SELECT token FROM participants WHERE id = $1", participant.ID).Scan(&voteToken))
	require.NotEmpty(t, voteToken)
	return participant.ID, voteToken
}

// TestVotingFlow covers the whole lifecycle: create and activate a poll,
// enroll an invitee, authenticate by token, vote, and read the results.
func TestVotingFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, adminEmail := app.createUser(t, domain.RoleAdmin)
	session := app.login(t, adminEmail)

	poll := app.createActivePoll(t, session, nil)
	require.Len(t, poll.Ballot, 1)
	question := poll.Ballot[0]

	participantID, voteToken := app.enrollInvitee(t, session, poll.ID, "invitee@example.com")

	// Authenticate with the voting token, anonymously.
	resp := app.doJSON(t, "POST", fmt.Sprintf("%s/api/polls/%s/vote/auth", app.Server.URL, poll.ID), "",
		map[string]any{"token": voteToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	auth := decodeBody[map[string]any](t, resp)
	assert.Equal(t, participantID.String(), auth["participant_id"])
	assert.Equal(t, false, auth["has_voted"])

	// Cast the vote; the submission is bound to the presented token.
	votePayload := map[string]any{
		"token": voteToken,
		"votes": map[string]any{question.ID.String(): []string{question.Options[0].ID.String()}},
	}
	resp = app.doJSON(t, "POST", fmt.Sprintf("%s/api/polls/%s/votes", app.Server.URL, poll.ID), "", votePayload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Vote changes are off by default; a second submission conflicts.
	resp = app.doJSON(t, "POST", fmt.Sprintf("%s/api/polls/%s/votes", app.Server.URL, poll.ID), "", votePayload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// The admin sees full counts while the poll is still open.
	resp = app.doJSON(t, "GET", fmt.Sprintf("%s/api/polls/%s/results", app.Server.URL, poll.ID), session, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminView := decodeBody[domain.ResultsView](t, resp)
	require.Len(t, adminView.Questions, 1)
	require.Len(t, adminView.Questions[0].Options, 2)
	assert.Equal(t, int64(1), adminView.Questions[0].Options[0].VoteCount)
	assert.Equal(t, int64(1), adminView.Statistics.VotedParticipants)

	// The invitee, viewing by token, gets the redacted rendition.
	resp = app.doJSON(t, "GET", fmt.Sprintf("%s/api/polls/%s/results?token=%s", app.Server.URL, poll.ID, voteToken), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	voterView := decodeBody[domain.ResultsView](t, resp)
	assert.False(t, voterView.Permissions.ShowVoteCounts)
	require.Len(t, voterView.Questions, 1)
	assert.Empty(t, voterView.Questions[0].Options)

	// The audit trail recorded the enrollment and the vote.
	resp = app.doJSON(t, "GET", fmt.Sprintf("%s/api/polls/%s/audit", app.Server.URL, poll.ID), session, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	events := decodeBody[[]domain.AuditEvent](t, resp)
	types := make([]domain.AuditEventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.Contains(t, types, domain.EventParticipantAdded)
	assert.Contains(t, types, domain.EventVoteCast)
}

func TestInPersonVotingFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, adminEmail := app.createUser(t, domain.RoleAdmin)
	session := app.login(t, adminEmail)

	settings := domain.DefaultSettings()
	settings.AllowInPersonVoting = true
	poll := app.createActivePoll(t, session, &settings)
	question := poll.Ballot[0]

	targetID, _ := app.enrollInvitee(t, session, poll.ID, "inperson@example.com")

	votePayload := map[string]any{
		"votes":               map[string]any{question.ID.String(): []string{question.Options[1].ID.String()}},
		"in_person_target_id": targetID,
	}

	// Without the delegation marker the in-person vote is refused.
	resp := app.doJSON(t, "POST", fmt.Sprintf("%s/api/polls/%s/votes", app.Server.URL, poll.ID), session, votePayload)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = app.doJSON(t, "POST", fmt.Sprintf("%s/api/polls/%s/participants/%s/in-person", app.Server.URL, poll.ID, targetID), session, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = app.doJSON(t, "POST", fmt.Sprintf("%s/api/polls/%s/votes", app.Server.URL, poll.ID), session, votePayload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// The delegation is single-use for this delegate.
	resp = app.doJSON(t, "POST", fmt.Sprintf("%s/api/polls/%s/votes", app.Server.URL, poll.ID), session, votePayload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// The vote landed on the target participant.
	var hasVoted bool
	require.NoError(t, app.DB.QueryRow("SELECT has_voted FROM participants WHERE id = $1", targetID).Scan(&hasVoted))
	assert.True(t, hasVoted)
}
