package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/bookmarks/internal/server/models"
)

type editUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	id, ok := r.identity(w, req)
	if !ok {
		return
	}

	u, err := r.users.Me(req.Context(), id.UserID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (r *Router) handleEditUser(w http.ResponseWriter, req *http.Request) {
	id, ok := r.identity(w, req)
	if !ok {
		return
	}

	var payload editUserRequest
	if err := decodeJSON(w, req, &payload); err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	u, err := r.users.EditUser(req.Context(), id.UserID, models.UserPatch{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// identity returns the caller set by requireAuth. Its absence means a
// protected handler was registered without the guard.
func (r *Router) identity(w http.ResponseWriter, req *http.Request) (Identity, bool) {
	id, ok := identityFromContext(req.Context())
	if !ok {
		r.logger.Error(req.Context(), "identity missing from context", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
	return id, ok
}
