package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrPollNotFound        = errors.New("poll not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUserNotFound        = errors.New("user not found")

	ErrPermissionDenied = errors.New("permission denied")

	// ErrAuthenticationFailed is intentionally uninformative: it never reveals
	// whether a token exists elsewhere or which credential check failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	ErrValidation = errors.New("validation failed")

	ErrAlreadyVoted         = errors.New("participant has already voted")
	ErrTokenUsed            = errors.New("token already used")
	ErrDuplicateParticipant = errors.New("participant email already enrolled")
	ErrDelegationUsed       = errors.New("in-person delegation already used")

	ErrPollNotActive = errors.New("poll is not active")
	ErrPollEnded     = errors.New("poll has ended")

	ErrInternal = errors.New("internal error")
)

// ValidationError carries field-level detail for a rejected vote payload.
type ValidationError struct {
	QuestionID    uuid.UUID
	QuestionTitle string
	Reason        string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.QuestionTitle)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
