package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/bookmarks/internal/server/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	r.handleCredentials(w, req, r.users.SignUp, http.StatusCreated)
}

func (r *Router) handleSignin(w http.ResponseWriter, req *http.Request) {
	r.handleCredentials(w, req, r.users.SignIn, http.StatusOK)
}

func (r *Router) handleCredentials(w http.ResponseWriter, req *http.Request,
	do func(ctx context.Context, c services.Credentials) (string, error), status int) {

	var payload credentialsRequest
	if err := decodeJSON(w, req, &payload); err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	token, err := do(req.Context(), services.Credentials{Email: payload.Email, Password: payload.Password})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}

	writeJSON(w, status, tokenResponse{AccessToken: token})
}
