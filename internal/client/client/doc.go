// Package client talks to the bookmarks HTTP API.
//
// # Overview
//
// HTTPClient wraps every endpoint of the API: SignUp/SignIn (which keep the
// returned access token for later calls), Me/EditUser, bookmark CRUD,
// ExportBookmarks and Ping. Requests carry the token as a bearer
// Authorization header.
//
// # Error Handling
//
// Non-2xx responses come back as *APIError holding the status and the
// server's message. APIError unwraps to a sentinel so callers can match with
// errors.Is: ErrUnauthorized, ErrForbidden, ErrInvalidInput, ErrRateLimited,
// ErrNotConfigured, ErrServer. Transport failures match ErrUnavailable.
//
// An HTTPClient is safe for concurrent use.
package client
