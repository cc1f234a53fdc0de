package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"aiplatform/internal/admin"
	"aiplatform/internal/partner"
	"aiplatform/pkg/logger"
)

// AdminHandler serves the admin dashboard, reports, and partner management.
type AdminHandler struct {
	service  *admin.Service
	partners *partner.Service
	logger   logger.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(service *admin.Service, partners *partner.Service, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		service:  service,
		partners: partners,
		logger:   log,
	}
}

// Overview returns the cached dashboard figures.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard overview", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to build overview")
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// Users returns the filtered user report.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.UserReport(r.Context(), queryFromRequest(r.URL.Query(), "status", "plan"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build user report")
		return
	}

	respondJSON(w, http.StatusOK, rep)
}

// UsersCSV streams the user report as a CSV download.
func (h *AdminHandler) UsersCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportUsersCSV(r.Context(), queryFromRequest(r.URL.Query(), "status", "plan"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to export users")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Partners returns the filtered marketing partner report.
func (h *AdminHandler) Partners(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.PartnerReport(r.Context(), queryFromRequest(r.URL.Query(), "status"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build marketing report")
		return
	}

	respondJSON(w, http.StatusOK, rep)
}

// PartnersCSV streams the marketing report as a CSV download.
func (h *AdminHandler) PartnersCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportPartnersCSV(r.Context(), queryFromRequest(r.URL.Query(), "status"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to export partners")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="partners.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ActivatePartner moves a pending partner application to active.
func (h *AdminHandler) ActivatePartner(w http.ResponseWriter, r *http.Request) {
	partnerID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid partner ID")
		return
	}

	p, err := h.partners.Activate(r.Context(), partnerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.service.InvalidateOverview(r.Context())
	respondJSON(w, http.StatusOK, p)
}

// SuspendPartner disables a partner account.
func (h *AdminHandler) SuspendPartner(w http.ResponseWriter, r *http.Request) {
	partnerID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid partner ID")
		return
	}

	p, err := h.partners.Suspend(r.Context(), partnerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.service.InvalidateOverview(r.Context())
	respondJSON(w, http.StatusOK, p)
}
