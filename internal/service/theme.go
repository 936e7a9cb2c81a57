package service

import (
	"context"
	"strings"

	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

// DefaultThemeIcon is used when no keyword matches a theme name.
const DefaultThemeIcon = "bi-emoji-laughing"

// themeIcons is checked in order; the first keyword contained in the
// lowercased name wins.
var themeIcons = []struct {
	keyword string
	icon    string
}{
	{"sarcasm", "bi-emoji-wink"},
	{"satire", "bi-newspaper"},
	{"parody", "bi-film"},
	{"irony", "bi-arrow-repeat"},
	{"slapstick", "bi-person-arms-up"},
	{"wit", "bi-lightbulb"},
	{"pun", "bi-chat-quote"},
	{"dark", "bi-moon-stars"},
	{"absurd", "bi-question-diamond"},
	{"observational", "bi-eye"},
	{"self-deprecating", "bi-emoji-smile-upside-down"},
	{"deadpan", "bi-emoji-expressionless"},
}

// ThemeIcon picks the display icon for a theme name.
func ThemeIcon(name string) string {
	lower := strings.ToLower(name)
	for _, ti := range themeIcons {
		if strings.Contains(lower, ti.keyword) {
			return ti.icon
		}
	}
	return DefaultThemeIcon
}

// ThemeService serves the read-only humor theme catalog.
type ThemeService struct {
	repo repository.ThemeRepository
}

func NewThemeService(repo repository.ThemeRepository) *ThemeService {
	return &ThemeService{repo: repo}
}

// ListThemes returns every theme ordered by id, each with its icon.
func (s *ThemeService) ListThemes(ctx context.Context) ([]model.ThemeView, error) {
	themes, err := s.repo.ListThemes(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	out := make([]model.ThemeView, 0, len(themes))
	for _, t := range themes {
		out = append(out, model.ThemeView{HumorTheme: t, Icon: ThemeIcon(t.Name)})
	}
	return out, nil
}
