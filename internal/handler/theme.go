package handler

import (
	"net/http"

	"github.com/sakif/humor-hub/internal/service"
)

type ThemeHandler struct {
	themes *service.ThemeService
}

func NewThemeHandler(themes *service.ThemeService) *ThemeHandler {
	return &ThemeHandler{themes: themes}
}

// HandleList returns the theme catalog.
//
// HTTP: GET /api/themes
func (h *ThemeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themes.ListThemes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themes)
}
