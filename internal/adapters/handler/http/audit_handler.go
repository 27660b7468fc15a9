package http

import (
	"net/http"

	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{
		service: service,
	}
}

func (h *AuditHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
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

	events, err := h.service.List(r.Context(), callerID, role, pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
