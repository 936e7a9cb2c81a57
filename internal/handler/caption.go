package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/service"
	"github.com/sakif/humor-hub/internal/validation"
)

// CaptionHandler serves the rating feed and records votes.
type CaptionHandler struct {
	votes     *service.VoteService
	validator *validation.Validator
	logger    *slog.Logger
}

func NewCaptionHandler(votes *service.VoteService, v *validation.Validator, logger *slog.Logger) *CaptionHandler {
	return &CaptionHandler{votes: votes, validator: v, logger: logger}
}

// voteRequest takes a pointer so that a missing field is distinguishable
// from zero. Any integer is accepted.
type voteRequest struct {
	VoteValue *int `json:"voteValue" validate:"required"`
}

// HandleFeed returns the captions the caller still has to rate.
//
// HTTP: GET /api/captions/feed
func (h *CaptionHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.votes.Feed(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// HandleVote records a vote and returns the reloaded feed, which no longer
// contains the caption just voted on.
//
// HTTP: POST /api/captions/{id}/vote
// REQUEST BODY: {"voteValue": 1}
func (h *CaptionHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r, apperror.MsgLoginToVote)
	if sess == nil {
		return
	}

	var req voteRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.votes.Vote(r.Context(), sess, chi.URLParam(r, "id"), *req.VoteValue); err != nil {
		writeError(w, err)
		return
	}

	feed, err := h.votes.Feed(r.Context(), sess)
	if err != nil {
		// The vote is stored; only the reload failed.
		h.logger.Warn("feed reload after vote failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: feed})
}
