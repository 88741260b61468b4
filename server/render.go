package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-event-portal/internal/errors"
	"github.com/rs/zerolog/log"
)

// LoadingBody is rendered by guards while the session is still loading
const LoadingBody = "Loading..."

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

func writeLoading(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(LoadingBody))
}

// writeFailure renders a pipeline error. A failure that ended the session sends the
// browser to the login page; everything else is shown inline with the backend's status.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.RequiresLogin(err) {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		return
	}
	writeJSON(w, failureStatus(err), errorResponse{Error: apperrors.Message(err)})
}

func failureStatus(err error) int {
	var apiErr *apperrors.APIError
	switch {
	case apperrors.As(err, &apiErr) && apiErr.Status != 0:
		return apiErr.Status
	case apperrors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrNetworkFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
