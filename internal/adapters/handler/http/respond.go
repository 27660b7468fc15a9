package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evoteadm/evote/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

// writeError maps domain sentinels onto HTTP statuses. Anything unmapped is a
// generic internal error so persistence details never reach the caller.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPollNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrPermissionDenied):
		http.Error(w, domain.ErrPermissionDenied.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrAuthenticationFailed):
		http.Error(w, domain.ErrAuthenticationFailed.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrTokenUsed),
		errors.Is(err, domain.ErrDuplicateParticipant),
		errors.Is(err, domain.ErrDelegationUsed),
		errors.Is(err, domain.ErrPollNotActive),
		errors.Is(err, domain.ErrPollEnded):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
