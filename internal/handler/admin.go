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

// AdminHandler exposes moderation and the admin read views. Every route
// goes through ModerationService, which re-checks the superadmin flag.
type AdminHandler struct {
	mod       *service.ModerationService
	validator *validation.Validator
	logger    *slog.Logger
}

func NewAdminHandler(mod *service.ModerationService, v *validation.Validator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{mod: mod, validator: v, logger: logger}
}

type visibilityRequest struct {
	IsPublic *bool `json:"isPublic" validate:"required"`
}

// HTTP: GET /api/admin/dashboard
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.mod.Dashboard(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HTTP: GET /api/admin/users
func (h *AdminHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.mod.Users(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HTTP: GET /api/admin/captions
func (h *AdminHandler) HandleCaptions(w http.ResponseWriter, r *http.Request) {
	captions, err := h.mod.Captions(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, captions)
}

// HandleSetVisibility toggles a caption and returns the reloaded caption list.
//
// HTTP: PATCH /api/admin/captions/{id}
// REQUEST BODY: {"isPublic": false}
func (h *AdminHandler) HandleSetVisibility(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r, apperror.MsgNotAuthenticated)
	if sess == nil {
		return
	}

	var req visibilityRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.mod.SetVisibility(r.Context(), sess, chi.URLParam(r, "id"), *req.IsPublic); err != nil {
		writeError(w, err)
		return
	}
	h.writeReloaded(w, r, sess)
}

// HandleDelete removes a caption and returns the reloaded caption list.
//
// HTTP: DELETE /api/admin/captions/{id}
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if err := h.mod.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	h.writeReloaded(w, r, sess)
}

func (h *AdminHandler) writeReloaded(w http.ResponseWriter, r *http.Request, sess *auth.Session) {
	captions, err := h.mod.Captions(r.Context(), sess)
	if err != nil {
		h.logger.Warn("caption reload after moderation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: captions})
}
