package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

// =========================================================================
// FAKE STORE
// =========================================================================
//
// fakeStore implements repository.Store in memory. It reproduces the two
// store-side rules the services rely on: a duplicate (caption, profile) vote
// fails with a unique violation, and like_count moves by the vote value.
// Setting failWith makes every call return that error.

type fakeStore struct {
	themes   []model.HumorTheme
	profiles map[string]*model.Profile
	captions map[string]*model.Caption
	votes    []model.CaptionVote

	failWith error
	mutated  int
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[string]*model.Profile),
		captions: make(map[string]*model.Caption),
	}
}

func (f *fakeStore) addProfile(p model.Profile) { f.profiles[p.ID] = &p }
func (f *fakeStore) addCaption(c model.Caption) { f.captions[c.ID] = &c }

func (f *fakeStore) ListThemes(context.Context) ([]model.HumorTheme, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]model.HumorTheme{}, f.themes...), nil
}

func (f *fakeStore) GetProfile(_ context.Context, id string) (*model.Profile, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperror.NotFound("profile", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListProfiles(_ context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Profile{}
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, opts.Limit), nil
}

func (f *fakeStore) GetCaption(_ context.Context, id string) (*model.Caption, error) {
	c, ok := f.captions[id]
	if !ok {
		return nil, apperror.NotFound("caption", id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ListPublicCaptions(_ context.Context, excludeIDs []string, opts repository.ListOptions) ([]model.Caption, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	skip := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		skip[id] = true
	}
	out := []model.Caption{}
	for _, c := range f.sortedCaptions() {
		if c.IsPublic && !skip[c.ID] {
			out = append(out, c)
		}
	}
	return limit(out, opts.Limit), nil
}

func (f *fakeStore) ListCaptions(_ context.Context, opts repository.ListOptions) ([]model.Caption, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return limit(f.sortedCaptions(), opts.Limit), nil
}

func (f *fakeStore) SetCaptionPublic(_ context.Context, id string, isPublic bool) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mutated++
	if c, ok := f.captions[id]; ok {
		c.IsPublic = isPublic
	}
	return nil
}

func (f *fakeStore) DeleteCaption(_ context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mutated++
	delete(f.captions, id)
	return nil
}

func (f *fakeStore) InsertVote(_ context.Context, v *model.CaptionVote) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.votes {
		if existing.CaptionID == v.CaptionID && existing.ProfileID == v.ProfileID {
			return &repository.ConstraintError{Code: repository.UniqueViolation, Err: errors.New("duplicate key")}
		}
	}
	f.mutated++
	f.votes = append(f.votes, *v)
	if c, ok := f.captions[v.CaptionID]; ok {
		c.LikeCount += v.VoteValue
	}
	return nil
}

func (f *fakeStore) VotedCaptionIDs(_ context.Context, profileID string) ([]string, error) {
	ids := []string{}
	for _, v := range f.votes {
		if v.ProfileID == profileID {
			ids = append(ids, v.CaptionID)
		}
	}
	return ids, nil
}

func (f *fakeStore) Totals(context.Context) (*model.Totals, error) {
	return &model.Totals{Captions: len(f.captions), Users: len(f.profiles), Votes: len(f.votes)}, nil
}

func (f *fakeStore) CaptionCountsByProfile(context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, c := range f.captions {
		if c.ProfileID != "" {
			out[c.ProfileID]++
		}
	}
	return out, nil
}

func (f *fakeStore) VoteCountsByProfile(context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, v := range f.votes {
		out[v.ProfileID]++
	}
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) sortedCaptions() []model.Caption {
	out := make([]model.Caption, 0, len(f.captions))
	for _, c := range f.captions {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// =========================================================================
// FAKE PIPELINE
// =========================================================================

// fakeAPI implements CaptionAPI and records the calls it receives.
type fakeAPI struct {
	calls []string
	token string

	presignErr  error
	registerErr error
	captionsErr error
	captions    []model.GeneratedCaption
}

func (f *fakeAPI) GeneratePresignedURL(_ context.Context, token, contentType string) (*model.PresignedUpload, error) {
	f.calls = append(f.calls, "presign:"+contentType)
	f.token = token
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	return &model.PresignedUpload{PresignedURL: "https://storage.test/put/1", CDNURL: "https://cdn.test/1.png"}, nil
}

func (f *fakeAPI) RegisterImageURL(_ context.Context, token, imageURL string) (*model.UploadedImage, error) {
	f.calls = append(f.calls, "register:"+imageURL)
	f.token = token
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &model.UploadedImage{ImageID: "img-1"}, nil
}

func (f *fakeAPI) GenerateCaptions(_ context.Context, token, imageID string) ([]model.GeneratedCaption, error) {
	f.calls = append(f.calls, "captions:"+imageID)
	f.token = token
	if f.captionsErr != nil {
		return nil, f.captionsErr
	}
	return f.captions, nil
}

// fakeUploader implements ImageUploader.
type fakeUploader struct {
	calls       int
	url         string
	contentType string
	err         error
}

func (f *fakeUploader) Put(_ context.Context, url, contentType string, _ []byte) error {
	f.calls++
	f.url = url
	f.contentType = contentType
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func session(userID string) *auth.Session {
	return &auth.Session{UserID: userID, Email: userID + "@example.com", AccessToken: "token-" + userID}
}
