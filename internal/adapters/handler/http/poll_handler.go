package http

import (
	"encoding/json"
	"net/http"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type PollHandler struct {
	service     ports.PollService
	permissions ports.PermissionService
}

func NewPollHandler(service ports.PollService, permissions ports.PermissionService) *PollHandler {
	return &PollHandler{
		service:     service,
		permissions: permissions,
	}
}

type createPollRequest struct {
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	StartDate      int64                   `json:"start_date"`
	EndDate        int64                   `json:"end_date"`
	ManagerID      *uuid.UUID              `json:"manager_id,omitempty"`
	Settings       *domain.Settings        `json:"settings,omitempty"`
	Ballot         []createQuestionRequest `json:"ballot"`
	WillSendEmails bool                    `json:"will_send_emails"`
}

type createQuestionRequest struct {
	Title        string                `json:"title"`
	MinSelection int                   `json:"min_selection"`
	MaxSelection int                   `json:"max_selection"`
	Options      []createOptionRequest `json:"options"`
}

type createOptionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	ImageURL    string `json:"image_url"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	poll, err := h.service.Create(r.Context(), callerID, role, ports.CreatePollInput{
		Title:          req.Title,
		Description:    req.Description,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		ManagerID:      req.ManagerID,
		Settings:       req.Settings,
		Ballot:         toQuestionInputs(req.Ballot),
		WillSendEmails: req.WillSendEmails,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, poll)
}

func toQuestionInputs(reqs []createQuestionRequest) []ports.CreateQuestionInput {
	if reqs == nil {
		return nil
	}
	inputs := make([]ports.CreateQuestionInput, 0, len(reqs))
	for _, q := range reqs {
		qi := ports.CreateQuestionInput{
			Title:        q.Title,
			MinSelection: q.MinSelection,
			MaxSelection: q.MaxSelection,
		}
		for _, o := range q.Options {
			qi.Options = append(qi.Options, ports.CreateOptionInput{
				Title:       o.Title,
				Description: o.Description,
				Link:        o.Link,
				ImageURL:    o.ImageURL,
			})
		}
		inputs = append(inputs, qi)
	}
	return inputs
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
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

	poll, err := h.service.Get(r.Context(), callerID, role, pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	polls, err := h.service.List(r.Context(), callerID, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

type updatePollRequest struct {
	Title          *string                 `json:"title,omitempty"`
	Description    *string                 `json:"description,omitempty"`
	StartDate      *int64                  `json:"start_date,omitempty"`
	EndDate        *int64                  `json:"end_date,omitempty"`
	Status         *domain.PollStatus      `json:"status,omitempty"`
	Settings       *domain.Settings        `json:"settings,omitempty"`
	Ballot         []createQuestionRequest `json:"ballot,omitempty"`
	WillSendEmails *bool                   `json:"will_send_emails,omitempty"`
}

func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
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

	var req updatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	poll, err := h.service.Update(r.Context(), callerID, role, pollID, ports.UpdatePollInput{
		Title:          req.Title,
		Description:    req.Description,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         req.Status,
		Settings:       req.Settings,
		Ballot:         toQuestionInputs(req.Ballot),
		WillSendEmails: req.WillSendEmails,
	}, requestMeta(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Delete(r.Context(), callerID, role, pollID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
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

	caps, err := h.permissions.Resolve(r.Context(), callerID, role, pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, caps)
}

type assignRoleRequest struct {
	UserID   uuid.UUID               `json:"user_id"`
	Relation domain.PollRoleRelation `json:"relation"`
}

func (h *PollHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
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

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Relation != domain.RelationAuditor && req.Relation != domain.RelationEditor {
		http.Error(w, "invalid relation", http.StatusBadRequest)
		return
	}

	if err := h.service.AssignRole(r.Context(), callerID, role, pollID, req.UserID, req.Relation); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *PollHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
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
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	relation := domain.PollRoleRelation(chi.URLParam(r, "relation"))
	if relation != domain.RelationAuditor && relation != domain.RelationEditor {
		http.Error(w, "invalid relation", http.StatusBadRequest)
		return
	}

	if err := h.service.RemoveRole(r.Context(), callerID, role, pollID, userID, relation); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
