package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopify-workspace-connector/internal/domain"

	"github.com/rs/zerolog/hlog"
)

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataResponse{Data: data})
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrSecurityCheckFailed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Only classified errors expose their message; anything
// else is logged and reported as a generic failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	var domainErr *domain.Error
	if status == http.StatusInternalServerError || !errors.As(err, &domainErr) {
		hlog.FromRequest(r).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("Request failed")
		if status == http.StatusInternalServerError {
			writeErrorMessage(w, status, "Internal server error")
			return
		}
		writeErrorMessage(w, status, http.StatusText(status))
		return
	}
	writeErrorMessage(w, status, domainErr.Message)
}
