package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/corveoperu/cuervo-blanco-web/internal/content/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/content/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/content/service"
	"github.com/go-chi/chi/v5"
)

type ContentHandler struct {
	content *service.ContentService
}

func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// ListProjects handles GET /projects, grouped by academy level.
func (h *ContentHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.content.ProjectsByLevel(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list projects")
		return
	}
	respondJSON(w, http.StatusOK, grouped)
}

func (h *ContentHandler) SubmitRepair(w http.ResponseWriter, r *http.Request) {
	var req domain.RepairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := h.content.SubmitRepairRequest(r.Context(), &req)
	if err != nil {
		handleContentError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type repairStatusDTO struct {
	Ticket *domain.RepairRequest `json:"ticket"`
	Stage  domain.RepairStage    `json:"stage"`
	Stages []domain.RepairStage  `json:"stages"`
}

// TrackRepair handles GET /repairs/{ticket_code}, returning the ticket with
// its timeline so the page can render progress.
func (h *ContentHandler) TrackRepair(w http.ResponseWriter, r *http.Request) {
	req, err := h.content.TrackRepair(r.Context(), chi.URLParam(r, "ticket_code"))
	if err != nil {
		handleContentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, repairStatusDTO{
		Ticket: req,
		Stage:  req.StageName(),
		Stages: domain.RepairStages,
	})
}

func (h *ContentHandler) SubmitCommission(w http.ResponseWriter, r *http.Request) {
	var req domain.Commission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.content.SubmitCommission(r.Context(), &req); err != nil {
		handleContentError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

// Admin endpoints.

func (h *ContentHandler) ListRepairs(w http.ResponseWriter, r *http.Request) {
	repairs, err := h.content.ListRepairRequests(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list repair requests")
		return
	}
	respondJSON(w, http.StatusOK, repairs)
}

func (h *ContentHandler) AdvanceRepair(w http.ResponseWriter, r *http.Request) {
	req, err := h.content.AdvanceRepairStage(r.Context(), chi.URLParam(r, "ticket_code"))
	if err != nil {
		handleContentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *ContentHandler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	commissions, err := h.content.ListCommissions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list commissions")
		return
	}
	respondJSON(w, http.StatusOK, commissions)
}

type UpdateCommissionDTO struct {
	Status domain.CommissionStatus `json:"status"`
}

func (h *ContentHandler) UpdateCommission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "commission_id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_commission_id", "commission_id must be a positive integer")
		return
	}

	var req UpdateCommissionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.content.UpdateCommissionStatus(r.Context(), id, req.Status); err != nil {
		handleContentError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		respondError(w, http.StatusBadRequest, "missing_fields", "required fields are missing")
	case errors.Is(err, service.ErrInvalidCommission):
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown commission status")
	case errors.Is(err, service.ErrTicketDelivered):
		respondError(w, http.StatusConflict, "ticket_delivered", "ticket already delivered")
	case errors.Is(err, repository.ErrTicketNotFound):
		respondError(w, http.StatusNotFound, "not_found", "repair ticket not found")
	case errors.Is(err, repository.ErrCommissionNotFound):
		respondError(w, http.StatusNotFound, "not_found", "commission not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
