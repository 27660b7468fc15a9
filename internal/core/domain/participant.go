package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ParticipantStatus string

const (
	ParticipantApproved ParticipantStatus = "approved"
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantRejected ParticipantStatus = "rejected"
)

// Participant is an enrolled voter record owned by its poll. UserID is set
// only for registered-user participants; Token only for external invitees.
type Participant struct {
	ID                 uuid.UUID         `json:"id"`
	PollID             uuid.UUID         `json:"poll_id"`
	UserID             *uuid.UUID        `json:"user_id,omitempty"`
	Email              string            `json:"email"`
	Name               string            `json:"name"`
	IsUser             bool              `json:"is_user"`
	Token              string            `json:"-"`
	TokenUsed          bool              `json:"token_used"`
	TokenViewed        bool              `json:"token_viewed"`
	TokenLastRevokedAt *time.Time        `json:"token_last_revoked_at,omitempty"`
	VoteWeight         float64           `json:"vote_weight"`
	Status             ParticipantStatus `json:"status"`
	HasVoted           bool              `json:"has_voted"`
	LastEmailSentAt    *time.Time        `json:"last_email_sent_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// Initials masks the participant name to dotted initials, e.g. "J. D.".
func (p *Participant) Initials() string {
	var parts []string
	for _, w := range strings.Fields(p.Name) {
		r := []rune(w)
		parts = append(parts, strings.ToUpper(string(r[0]))+".")
	}
	return strings.Join(parts, " ")
}

// NormalizeEmail lowercases and trims an email for the poll-unique check.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
