package handler

import (
	"net/http"

	"aiplatform/internal/auth"
	"aiplatform/internal/middleware"
	"aiplatform/pkg/logger"
	"aiplatform/pkg/validator"
)

// AuthHandler manages signup, login, and two-factor endpoints.
type AuthHandler struct {
	service   *auth.Service
	validator *validator.Validator
	logger    logger.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(service *auth.Service, val *validator.Validator, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: val,
		logger:    log,
	}
}

// Register handles end-user signup.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !validateDTO(w, h.validator, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// Login handles end-user login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// PartnerApply handles marketing partner applications.
func (h *AuthHandler) PartnerApply(w http.ResponseWriter, r *http.Request) {
	var req auth.PartnerApplication
	if !decodeJSON(w, r, &req) {
		return
	}

	if !validateDTO(w, h.validator, &req) {
		return
	}

	partner, err := h.service.ApplyPartner(r.Context(), &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"partner": partner,
		"message": "Application received. Our team will review it shortly.",
	})
}

// PartnerLogin handles marketing partner login.
func (h *AuthHandler) PartnerLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.LoginPartner(r.Context(), &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// TwoFactorSetup provisions a TOTP secret for the authenticated admin.
func (h *AuthHandler) TwoFactorSetup(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	setup, err := h.service.SetupTwoFactor(r.Context(), subject)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, setup)
}

type twoFactorVerifyRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// TwoFactorVerify confirms a TOTP code and enables two-factor auth.
func (h *AuthHandler) TwoFactorVerify(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req twoFactorVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.VerifyTwoFactor(r.Context(), subject, req.Code); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
