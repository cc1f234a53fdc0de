package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"aiplatform/internal/domain"
	"aiplatform/internal/middleware"
	"aiplatform/internal/withdrawal"
	"aiplatform/pkg/logger"
	"aiplatform/pkg/validator"
)

// partnerFinder resolves the authenticated subject to a partner record.
type partnerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.MarketingPartner, error)
}

// WithdrawalHandler manages partner payout endpoints.
type WithdrawalHandler struct {
	service   *withdrawal.Service
	partners  partnerFinder
	validator *validator.Validator
	logger    logger.Logger
}

// NewWithdrawalHandler creates a WithdrawalHandler.
func NewWithdrawalHandler(service *withdrawal.Service, partners partnerFinder, val *validator.Validator, log logger.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{
		service:   service,
		partners:  partners,
		validator: val,
		logger:    log,
	}
}

// Submit records a withdrawal request against the partner's earnings.
func (h *WithdrawalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req withdrawal.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !validateDTO(w, h.validator, &req) {
		return
	}

	partner, err := h.partners.FindByID(r.Context(), subject)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	wr, err := h.service.Submit(r.Context(), partner, &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, wr)
}

// History lists the authenticated partner's withdrawal requests.
func (h *WithdrawalHandler) History(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requests, err := h.service.HistoryForPartner(r.Context(), subject)
	if err != nil {
		h.logger.Error("Failed to fetch withdrawal history", map[string]interface{}{
			"error":      err.Error(),
			"partner_id": subject,
		})
		respondError(w, http.StatusInternalServerError, "Failed to fetch withdrawal history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

// Queue lists withdrawal requests for the admin payout screen.
func (h *WithdrawalHandler) Queue(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.AdminReport(r.Context(), queryFromRequest(r.URL.Query(), "status", "method"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build withdrawal report")
		return
	}

	respondJSON(w, http.StatusOK, rep)
}

// Decide applies an admin decision to a pending withdrawal request.
func (h *WithdrawalHandler) Decide(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	requestID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var req decisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	note := validator.Sanitize(req.Note)

	decided, err := h.service.Decide(r.Context(), requestID, req.Action, note, adminID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, decided)
}
