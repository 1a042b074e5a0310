package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/bookmarks/internal/common"
)

// errorBody is the shape of every error response.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{StatusCode: status, Message: msg, Error: http.StatusText(status)})
}

// writeServiceError maps a service error to its HTTP status. Internal
// failures are logged with detail and answered with a generic message.
func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error) {
	var ve *common.ValidationError

	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, common.ErrDuplicateCredential):
		writeError(w, http.StatusForbidden, "Credentials taken")
	case errors.Is(err, common.ErrInvalidCredential):
		writeError(w, http.StatusForbidden, "Invalid credentials")
	case errors.Is(err, common.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrForbidden):
		writeError(w, http.StatusForbidden, "Access to resources denied")
	case errors.Is(err, common.ErrFeatureDisabled):
		writeError(w, http.StatusNotFound, "Export is not configured")
	default:
		r.logger.Error(req.Context(), "request failed", "path", req.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
