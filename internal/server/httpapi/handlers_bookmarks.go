package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/dmitrijs2005/bookmarks/internal/server/services"
)

type bookmarkRequest struct {
	Title       *string `json:"title"`
	Link        *string `json:"link"`
	Description *string `json:"description"`
}

func (r *Router) handleCreateBookmark(w http.ResponseWriter, req *http.Request) {
	id, ok := r.identity(w, req)
	if !ok {
		return
	}

	var payload bookmarkRequest
	if err := decodeJSON(w, req, &payload); err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	in := services.NewBookmark{Description: payload.Description}
	if payload.Title != nil {
		in.Title = *payload.Title
	}
	if payload.Link != nil {
		in.Link = *payload.Link
	}

	b, err := r.bookmarks.Create(req.Context(), id.UserID, in)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (r *Router) handleListBookmarks(w http.ResponseWriter, req *http.Request) {
	id, ok := r.identity(w, req)
	if !ok {
		return
	}

	items, err := r.bookmarks.List(req.Context(), id.UserID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (r *Router) handleGetBookmark(w http.ResponseWriter, req *http.Request) {
	id, ok := r.identity(w, req)
	if !ok {
		return
	}
	bookmarkID, err := pathID(req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	b, err := r.bookmarks.Get(req.Context(), id.UserID, bookmarkID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (r *Router) handleEditBookmark(w http.ResponseWriter, req *http.Request) {
	id, ok := r.identity(w, req)
	if !ok {
		return
	}
	bookmarkID, err := pathID(req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	var payload bookmarkRequest
	if err := decodeJSON(w, req, &payload); err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	b, err := r.bookmarks.Edit(req.Context(), id.UserID, bookmarkID, models.BookmarkPatch{
		Title:       payload.Title,
		Link:        payload.Link,
		Description: payload.Description,
	})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (r *Router) handleDeleteBookmark(w http.ResponseWriter, req *http.Request) {
	id, ok := r.identity(w, req)
	if !ok {
		return
	}
	bookmarkID, err := pathID(req)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	if err := r.bookmarks.Delete(req.Context(), id.UserID, bookmarkID); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) {
	id, ok := r.identity(w, req)
	if !ok {
		return
	}
	if r.exports == nil {
		writeError(w, http.StatusNotFound, "Export is not configured")
		return
	}

	exp, err := r.exports.Export(req.Context(), id.UserID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}
