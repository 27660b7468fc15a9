package http

import (
	"encoding/json"
	"net/http"

	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ParticipantHandler struct {
	service ports.ParticipantService
}

func NewParticipantHandler(service ports.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		service: service,
	}
}

type enrollRequest struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	VoteWeight float64 `json:"vote_weight"`
}

func (h *ParticipantHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	participant, err := h.service.Enroll(r.Context(), callerID, role, ports.EnrollParticipantInput{
		PollID:     pollID,
		Email:      req.Email,
		Name:       req.Name,
		VoteWeight: req.VoteWeight,
	}, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participant)
}

func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	participants, err := h.service.List(r.Context(), callerID, role, pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participants)
}

func (h *ParticipantHandler) Remove(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}
	participantID, err := uuid.Parse(chi.URLParam(r, "participantID"))
	if err != nil {
		http.Error(w, "invalid participant id", http.StatusBadRequest)
		return
	}

	if err := h.service.Remove(r.Context(), callerID, role, pollID, participantID, requestMeta(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ParticipantHandler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}
	participantID, err := uuid.Parse(chi.URLParam(r, "participantID"))
	if err != nil {
		http.Error(w, "invalid participant id", http.StatusBadRequest)
		return
	}

	participant, err := h.service.RegenerateToken(r.Context(), callerID, role, pollID, participantID, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}
	// The fresh token is returned once, to the manager who requested it.
	writeJSON(w, http.StatusOK, map[string]any{
		"participant": participant,
		"token":       participant.Token,
	})
}

type tokenViewedRequest struct {
	Token string `json:"token"`
}

func (h *ParticipantHandler) MarkTokenViewed(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req tokenViewedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.MarkTokenViewed(r.Context(), pollID, req.Token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
