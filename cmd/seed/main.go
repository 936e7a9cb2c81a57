// Command seed fills the local SQLite store with a theme catalog, three
// profiles (one superadmin) and a mix of public and hidden captions, then
// prints a signed access token per profile for use against a local server:
//
//	go run ./cmd/seed
//	curl -H "Authorization: Bearer <token>" localhost:8080/api/captions/feed
//
// Tokens are signed with supabase.jwt_secret, so the server must be running
// with the same secret.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/config"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository/sqlite"
)

var themes = []struct {
	name, description string
}{
	{"Sarcasm", "Saying the opposite of what you mean, with feeling"},
	{"Puns", "Wordplay that makes people groan"},
	{"Dark Humor", ""},
	{"Absurdist", "Logic takes the day off"},
	{"Observational", "Have you ever noticed..."},
	{"Self-Deprecating", "The joke is on me"},
}

var captions = []struct {
	content string
	public  bool
}{
	{"When the code compiles on the first try and you get suspicious", true},
	{"Me explaining my side project to people who did not ask", true},
	{"This meeting could have been an email, and the email could have been nothing", true},
	{"My plants when I remember to water them once a month", true},
	{"A caption the moderators hid", false},
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed dev tokens")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*configPath, *tokenTTL); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(configPath string, tokenTTL time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverSQLite {
		return fmt.Errorf("seed only writes to the local sqlite store, got driver %q", cfg.Database.Driver)
	}
	if cfg.Supabase.JWTSecret == "" {
		return fmt.Errorf("supabase.jwt_secret is required to sign dev tokens")
	}

	tokens, err := auth.NewTokenService(cfg.Supabase.JWTSecret, cfg.Supabase.Issuer)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	for i, th := range themes {
		t := &model.HumorTheme{ID: i + 1, Name: th.name}
		if th.description != "" {
			desc := th.description
			t.Description = &desc
		}
		if err := db.CreateTheme(ctx, t); err != nil {
			return err
		}
	}

	profiles := []*model.Profile{
		{ID: uuid.NewString(), Email: "admin@example.com", FirstName: "Ada", LastName: "Admin", IsSuperadmin: true},
		{ID: uuid.NewString(), Email: "rater@example.com", FirstName: "Ray", LastName: "Rater", IsInStudy: true},
		{ID: uuid.NewString(), Email: "newcomer@example.com"},
	}
	for _, p := range profiles {
		if err := db.UpsertProfile(ctx, p); err != nil {
			return err
		}
	}

	author := profiles[1].ID
	imageID, err := db.CreateImage(ctx, "https://cdn.example/seed.png", author)
	if err != nil {
		return err
	}

	base := time.Now().UTC().Add(-time.Duration(len(captions)) * time.Hour)
	for i, c := range captions {
		caption := &model.Caption{
			Content:   c.content,
			IsPublic:  c.public,
			ProfileID: author,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.CreateCaption(ctx, caption, imageID); err != nil {
			return err
		}
	}

	fmt.Printf("seeded %d themes, %d profiles, %d captions into %s\n\n",
		len(themes), len(profiles), len(captions), cfg.Database.Path)

	for _, p := range profiles {
		tok, err := tokens.Generate(p.ID, p.Email, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Printf("%-22s %-6s %s\n", p.Email, p.Role(), tok)
	}
	return nil
}
