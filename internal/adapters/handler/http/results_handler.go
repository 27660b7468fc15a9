package http

import (
	"net/http"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ResultsHandler struct {
	pollRepo        ports.PollRepository
	participantRepo ports.ParticipantRepository
	permissions     ports.PermissionService
	results         ports.ResultsService
}

func NewResultsHandler(pollRepo ports.PollRepository, participantRepo ports.ParticipantRepository, permissions ports.PermissionService, results ports.ResultsService) *ResultsHandler {
	return &ResultsHandler{
		pollRepo:        pollRepo,
		participantRepo: participantRepo,
		permissions:     permissions,
		results:         results,
	}
}

// GetResults tabulates the poll for the caller's access tier. Logged-in
// callers are tiered through the permission resolver; external invitees may
// present their voting token instead.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	poll, err := h.pollRepo.GetByID(r.Context(), pollID)
	if err != nil {
		writeError(w, err)
		return
	}

	tier := domain.TierNone
	var viewer *domain.Participant

	if callerID, role, ok := callerFromContext(r); ok {
		tier, viewer, err = h.permissions.Tier(r.Context(), callerID, role, poll)
		if err != nil {
			writeError(w, err)
			return
		}
	} else if token := r.URL.Query().Get("token"); token != "" {
		participant, err := h.participantRepo.GetByToken(r.Context(), pollID, token)
		if err == nil && participant.Status == domain.ParticipantApproved {
			tier = domain.TierParticipant
			viewer = participant
		}
	}

	if tier == domain.TierNone {
		http.Error(w, domain.ErrPermissionDenied.Error(), http.StatusForbidden)
		return
	}
	if tier == domain.TierParticipant && !poll.Settings.AllowResultsView {
		http.Error(w, domain.ErrPermissionDenied.Error(), http.StatusForbidden)
		return
	}

	view, err := h.results.Compute(r.Context(), poll, tier, viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
