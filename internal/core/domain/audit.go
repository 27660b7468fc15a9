package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditEventType string

const (
	EventPollUpdated         AuditEventType = "POLL_UPDATED"
	EventVoteCast            AuditEventType = "VOTE_CAST"
	EventVoteChanged         AuditEventType = "VOTE_CHANGED"
	EventMarkedInPersonVoted AuditEventType = "MARKED_AS_IN_PERSON_VOTED"
	EventInPersonVoteCast    AuditEventType = "IN_PERSON_VOTE_CAST"
	EventParticipantAdded    AuditEventType = "PARTICIPANT_ADDED"
	EventParticipantRemoved  AuditEventType = "PARTICIPANT_REMOVED"
	EventTokenRegenerated    AuditEventType = "TOKEN_REGENERATED"
)

// AuditEvent is an append-only record. A nil ActorUserID means the event was
// system-initiated. Events are written only while the poll is active.
type AuditEvent struct {
	ID            uuid.UUID      `json:"id"`
	EventType     AuditEventType `json:"event_type"`
	ActorUserID   *uuid.UUID     `json:"actor_user_id,omitempty"`
	PollID        uuid.UUID      `json:"poll_id"`
	ParticipantID *uuid.UUID     `json:"participant_id,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
	IPAddress     string         `json:"ip_address,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
