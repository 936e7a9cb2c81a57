// Package apperror defines the error taxonomy shared by every layer.
//
// Services never return HTTP status codes. They return an *AppError whose
// Err field is one of the sentinel kinds below, and the handler package maps
// the kind to a status code. Callers test the kind with errors.Is:
//
//	if errors.Is(err, apperror.ErrAlreadyVoted) { ... }
//
// and pull out the human-readable message (or the failing pipeline step)
// with errors.As:
//
//	var appErr *apperror.AppError
//	if errors.As(err, &appErr) { fmt.Println(appErr.Message) }
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrProfileNotFound = errors.New("profile not found")
	ErrAlreadyVoted    = errors.New("already voted")
	ErrUpstream        = errors.New("upstream error")
	ErrUploadTransport = errors.New("upload transport error")
	ErrStore           = errors.New("store error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
)

// User-visible messages. Clients render these verbatim next to the
// control that triggered the action.
const (
	MsgNotAuthenticated   = "Not authenticated"
	MsgLoginToVote        = "You must be logged in to vote"
	MsgProfileNotFound    = "Profile not found. Please try logging out and back in."
	MsgAlreadyVoted       = "You have already voted on this caption"
	MsgNotAuthorized      = "Not authorized"
	MsgUploadTransport    = "Failed to upload image to storage"
	MsgInvalidContentType = "Invalid file type. Please upload a JPEG, PNG, WebP, GIF, or HEIC image."
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // human-readable error message
	Field   string // optional: request field causing the error
	Step    string // optional: pipeline step that failed
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthenticated reports a missing or unusable session.
func Unauthenticated(message string) *AppError {
	if message == "" {
		message = MsgNotAuthenticated
	}
	return &AppError{Err: ErrUnauthenticated, Message: message}
}

// NotAuthorized reports an authenticated caller without the required privilege.
func NotAuthorized() *AppError {
	return &AppError{Err: ErrNotAuthorized, Message: MsgNotAuthorized}
}

// ProfileNotFound reports a session whose identity has no profile row. It is
// a provisioning inconsistency, not a missing login.
func ProfileNotFound() *AppError {
	return &AppError{Err: ErrProfileNotFound, Message: MsgProfileNotFound}
}

func AlreadyVoted() *AppError {
	return &AppError{Err: ErrAlreadyVoted, Message: MsgAlreadyVoted}
}

// Upstream wraps a non-success response from the captioning API. prefix is
// the step's failure sentence and detail is the response body, verbatim.
func Upstream(step, prefix, detail string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: fmt.Sprintf("%s: %s", prefix, detail),
		Step:    step,
	}
}

func UploadTransport(step string) *AppError {
	return &AppError{Err: ErrUploadTransport, Message: MsgUploadTransport, Step: step}
}

// Store passes a backend rejection through as an opaque message.
func Store(message string) *AppError {
	return &AppError{Err: ErrStore, Message: message}
}

func InvalidInput(field, message string) *AppError {
	return &AppError{Err: ErrInvalidInput, Message: message, Field: field}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// StepOf returns the pipeline step recorded on err, or "" when err carries none.
func StepOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Step
	}
	return ""
}
