package http

import (
	"encoding/json"
	"net/http"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type authenticateRequest struct {
	Token    string `json:"token,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type authenticateResponse struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Name          string    `json:"name"`
	HasVoted      bool      `json:"has_voted"`
}

// Authenticate resolves a voting token or credentials to a participant. It is
// a public endpoint; failures stay deliberately vague.
func (h *VoteHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Token == "" && (req.Email == "" || req.Password == "") {
		http.Error(w, "token or credentials required", http.StatusBadRequest)
		return
	}

	participant, err := h.service.Authenticate(r.Context(), pollID, ports.AuthInput{
		Token:    req.Token,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authenticateResponse{
		ParticipantID: participant.ID,
		Name:          participant.Name,
		HasVoted:      participant.HasVoted,
	})
}

type submitVoteRequest struct {
	Token            string             `json:"token,omitempty"`
	Email            string             `json:"email,omitempty"`
	Password         string             `json:"password,omitempty"`
	Votes            domain.VotePayload `json:"votes"`
	InPersonTargetID *uuid.UUID         `json:"in_person_target_id,omitempty"`
}

// SubmitVote casts a vote for the participant the presented token or
// credentials resolve to. In-person submissions identify the delegate through
// the session instead.
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	var req submitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.InPersonTargetID == nil && req.Token == "" && (req.Email == "" || req.Password == "") {
		http.Error(w, "token or credentials required", http.StatusBadRequest)
		return
	}

	input := ports.SubmitVoteInput{
		PollID: pollID,
		Auth: ports.AuthInput{
			Token:    req.Token,
			Email:    req.Email,
			Password: req.Password,
		},
		Payload:          req.Votes,
		InPersonTargetID: req.InPersonTargetID,
		Meta:             requestMeta(r),
	}
	// In-person delegation requires a logged-in delegate.
	if callerID, _, ok := callerFromContext(r); ok {
		input.ActorUserID = &callerID
	}

	if err := h.service.Submit(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *VoteHandler) MarkInPersonVoter(w http.ResponseWriter, r *http.Request) {
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

	err = h.service.MarkInPersonVoter(r.Context(), ports.MarkInPersonInput{
		PollID:        pollID,
		ParticipantID: participantID,
		CallerID:      callerID,
		CallerRole:    role,
		Meta:          requestMeta(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
