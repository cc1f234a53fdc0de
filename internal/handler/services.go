package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"aiplatform/internal/middleware"
	"aiplatform/internal/subscription"
	"aiplatform/pkg/logger"
)

// ServicesHandler manages the AI service catalog and subscriptions.
type ServicesHandler struct {
	service *subscription.Service
	logger  logger.Logger
}

// NewServicesHandler creates a ServicesHandler.
func NewServicesHandler(service *subscription.Service, log logger.Logger) *ServicesHandler {
	return &ServicesHandler{
		service: service,
		logger:  log,
	}
}

// Catalog lists the service catalog with the caller's subscription state.
func (h *ServicesHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	entries, err := h.service.Catalog(r.Context(), subject)
	if err != nil {
		h.logger.Error("Failed to load service catalog", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to load services")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"services": entries,
		"count":    len(entries),
	})
}

// Subscribe charges the service price to the caller's wallet.
func (h *ServicesHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	serviceID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid service ID")
		return
	}

	sub, err := h.service.Subscribe(r.Context(), subject, serviceID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, sub)
}

// Subscriptions lists the caller's subscriptions.
func (h *ServicesHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	subs, err := h.service.Subscriptions(r.Context(), subject)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch subscriptions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscriptions": subs,
		"count":         len(subs),
	})
}
