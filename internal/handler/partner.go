package handler

import (
	"net/http"

	"aiplatform/internal/middleware"
	"aiplatform/internal/partner"
	"aiplatform/pkg/logger"
)

// PartnerHandler serves the marketing partner dashboard and referral report.
type PartnerHandler struct {
	service *partner.Service
	logger  logger.Logger
}

// NewPartnerHandler creates a PartnerHandler.
func NewPartnerHandler(service *partner.Service, log logger.Logger) *PartnerHandler {
	return &PartnerHandler{
		service: service,
		logger:  log,
	}
}

// Summary returns the authenticated partner's dashboard figures.
func (h *PartnerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, err := h.service.Summary(r.Context(), subject)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// Referrals returns the partner's filtered referral report.
func (h *PartnerHandler) Referrals(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rep, err := h.service.Referrals(r.Context(), subject, queryFromRequest(r.URL.Query(), "status"))
	if err != nil {
		h.logger.Error("Failed to build referral report", map[string]interface{}{
			"error":      err.Error(),
			"partner_id": subject,
		})
		respondError(w, http.StatusInternalServerError, "Failed to build referral report")
		return
	}

	respondJSON(w, http.StatusOK, rep)
}
