// Package handler provides the HTTP handlers for the AI Platform API.
package handler

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"

	"aiplatform/internal/forms"
	"aiplatform/internal/report"
	"aiplatform/pkg/errors"
	"aiplatform/pkg/validator"
)

const maxBodyBytes = 1 << 20 // 1MB limit

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a strict JSON body into dst. A false return means a
// response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			respondError(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// validateDTO checks a decoded request body and, on failure, responds 400
// with per-field messages so signup and request forms can highlight the
// offending inputs. A false return means a response has been written.
func validateDTO(w http.ResponseWriter, v *validator.Validator, dst interface{}) bool {
	if fields := v.ValidateStructured(dst); fields != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"fields": fields,
		})
		return false
	}
	return true
}

// respondDomainError maps service errors to HTTP statuses. Validation
// violations carry their kind and field so the frontend can localize them.
func respondDomainError(w http.ResponseWriter, err error) {
	var viol *forms.Violation
	if stderrors.As(err, &viol) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": viol.Error(),
			"kind":  viol.Kind,
			"field": viol.Field,
		})
		return
	}

	switch {
	case stderrors.Is(err, errors.ErrUserNotFound),
		stderrors.Is(err, errors.ErrPartnerNotFound),
		stderrors.Is(err, errors.ErrPaymentNotFound),
		stderrors.Is(err, errors.ErrWithdrawalNotFound),
		stderrors.Is(err, errors.ErrServiceNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case stderrors.Is(err, errors.ErrUserAlreadyExists),
		stderrors.Is(err, errors.ErrPartnerAlreadyExists),
		stderrors.Is(err, errors.ErrAlreadySubscribed),
		stderrors.Is(err, errors.ErrRequestAlreadyDecided):
		respondError(w, http.StatusConflict, err.Error())
	case stderrors.Is(err, errors.ErrInvalidCredentials),
		stderrors.Is(err, errors.ErrInvalidTwoFactor):
		respondError(w, http.StatusUnauthorized, err.Error())
	case stderrors.Is(err, errors.ErrInactiveAccount),
		stderrors.Is(err, errors.ErrPartnerNotActive),
		stderrors.Is(err, errors.ErrAccessDenied):
		respondError(w, http.StatusForbidden, err.Error())
	case stderrors.Is(err, errors.ErrInsufficientBalance),
		stderrors.Is(err, errors.ErrInsufficientEarnings),
		stderrors.Is(err, errors.ErrInvalidDecision),
		stderrors.Is(err, errors.ErrTwoFactorNotEnabled):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// queryFromRequest builds a report query from the request's search and
// category filter parameters. Absent filters are treated as "all".
func queryFromRequest(values url.Values, filterKeys ...string) report.Query {
	q := report.Query{
		Search:  values.Get("search"),
		Filters: map[string]string{},
	}
	for _, key := range filterKeys {
		if v := values.Get(key); v != "" {
			q.Filters[key] = v
		}
	}
	return q
}
