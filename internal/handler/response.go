// Package handler contains the HTTP handlers for the Humor Hub API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path params, JSON body, multipart upload)
//  2. Read the optional session the auth middleware attached
//  3. Call one service operation, passing the session explicitly
//  4. Write the result, or map the AppError to a status code
//
// Handlers never decide whether a caller is allowed to do something. The
// services do that on every call, so a handler reached without a session
// still produces the right "Not authenticated" style message.
package handler

// RESPONSE HELPERS:
// Every error response from the API has the same shape:
//   {"error": "already_voted", "message": "You have already voted on this caption"}
//
// Upload failures also carry the step that failed:
//   {"error": "upstream_error", "message": "Failed to register image: ...", "failedStep": "register"}
//
// Messages are shown to users as-is, so they are passed through exactly as
// the service produced them.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/validation"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error      string `json:"error"`                // machine-readable kind, e.g. "already_voted"
	Message    string `json:"message"`              // user-visible text
	Field      string `json:"field,omitempty"`      // request field, for validation errors
	FailedStep string `json:"failedStep,omitempty"` // upload step, for pipeline errors
}

// SuccessResponse wraps mutation results.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before WriteHeader; anything set after is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorKinds maps each sentinel to its HTTP status and wire name. Order
// matters only in that the first match wins.
var errorKinds = []struct {
	kind   error
	status int
	name   string
}{
	{apperror.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{apperror.ErrNotAuthorized, http.StatusForbidden, "not_authorized"},
	{apperror.ErrProfileNotFound, http.StatusConflict, "profile_not_found"},
	{apperror.ErrAlreadyVoted, http.StatusConflict, "already_voted"},
	{apperror.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrUpstream, http.StatusBadGateway, "upstream_error"},
	{apperror.ErrUploadTransport, http.StatusBadGateway, "upload_transport_error"},
	{apperror.ErrStore, http.StatusInternalServerError, "store_error"},
}

// writeError maps a domain error to its HTTP status and sends it.
func writeError(w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	writeJSON(w, status, body)
}

func errorBody(err error) (int, ErrorResponse) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		name := "internal_error"
		for _, k := range errorKinds {
			if errors.Is(err, k.kind) {
				status, name = k.status, k.name
				break
			}
		}

		return status, ErrorResponse{
			Error:      name,
			Message:    appErr.Message,
			Field:      appErr.Field,
			FailedStep: appErr.Step,
		}
	}

	// Unknown error. Its text may contain SQL or file paths, so it is not sent.
	return http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	}
}

// requireSession writes Unauthenticated with msg and returns nil when the
// request has no session. Handlers with a body call it before decoding, so
// an anonymous caller is told to log in rather than about the body.
func requireSession(w http.ResponseWriter, r *http.Request, msg string) *auth.Session {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		writeError(w, apperror.Unauthenticated(msg))
	}
	return sess
}

// decodeJSON reads one JSON object into dst and validates it.
func decodeJSON(r *http.Request, v *validation.Validator, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return v.Validate(dst)
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
