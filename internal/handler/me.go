package handler

import (
	"net/http"

	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/service"
)

type MeHandler struct {
	profiles *service.ProfileService
}

func NewMeHandler(profiles *service.ProfileService) *MeHandler {
	return &MeHandler{profiles: profiles}
}

// HandleMe returns the caller's identity and profile.
//
// HTTP: GET /api/me
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	me, err := h.profiles.Me(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}
