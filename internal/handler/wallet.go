package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"aiplatform/internal/domain"
	"aiplatform/internal/middleware"
	"aiplatform/internal/payment"
	"aiplatform/internal/review"
	"aiplatform/pkg/logger"
	"aiplatform/pkg/validator"
)

// userFinder resolves the authenticated subject to a full user record.
type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// WalletHandler manages wallet recharge endpoints.
type WalletHandler struct {
	service   *payment.Service
	users     userFinder
	validator *validator.Validator
	logger    logger.Logger
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(service *payment.Service, users userFinder, val *validator.Validator, log logger.Logger) *WalletHandler {
	return &WalletHandler{
		service:   service,
		users:     users,
		validator: val,
		logger:    log,
	}
}

// Balance returns the authenticated user's wallet state.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.users.FindByID(r.Context(), subject)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"balance":     user.Balance,
		"total_spent": user.TotalSpent,
		"plan":        user.Plan,
	})
}

// SubmitRecharge records a screenshot-backed recharge for admin review.
func (h *WalletHandler) SubmitRecharge(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req payment.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !validateDTO(w, h.validator, &req) {
		return
	}

	user, err := h.users.FindByID(r.Context(), subject)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	pr, err := h.service.Submit(r.Context(), user, &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, pr)
}

// RechargeHistory lists the authenticated user's recharge requests.
func (h *WalletHandler) RechargeHistory(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requests, err := h.service.HistoryForUser(r.Context(), subject)
	if err != nil {
		h.logger.Error("Failed to fetch recharge history", map[string]interface{}{
			"error":   err.Error(),
			"user_id": subject,
		})
		respondError(w, http.StatusInternalServerError, "Failed to fetch recharge history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

// PaymentQueue lists payment requests for the admin approval screen.
func (h *WalletHandler) PaymentQueue(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.AdminReport(r.Context(), queryFromRequest(r.URL.Query(), "status", "method"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build payment report")
		return
	}

	respondJSON(w, http.StatusOK, rep)
}

type decisionRequest struct {
	Action review.Action `json:"action" validate:"required,oneof=approve reject"`
	Note   string        `json:"note"`
}

// DecidePayment applies an admin decision to a pending payment request.
func (h *WalletHandler) DecidePayment(w http.ResponseWriter, r *http.Request) {
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

	// The note is free text and ends up in the HTML notification mail.
	note := validator.Sanitize(req.Note)

	decided, err := h.service.Decide(r.Context(), requestID, req.Action, note, adminID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, decided)
}
