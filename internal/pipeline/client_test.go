package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/model"
)

// fakeAPI stands in for the captioning service. It records the last request
// body per path and answers with the canned status/body.
type fakeAPI struct {
	status int
	body   string
	bodies map[string]map[string]any
	auth   string
}

func newFakeAPI(t *testing.T, status int, body string) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{status: status, body: body, bodies: map[string]map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.auth = r.Header.Get("Authorization")
		var decoded map[string]any
		_ = json.NewDecoder(r.Body).Decode(&decoded)
		f.bodies[r.URL.Path] = decoded

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	}))
	t.Cleanup(srv.Close)
	return f, NewClient(srv.URL, 0)
}

func TestGeneratePresignedURL(t *testing.T) {
	f, c := newFakeAPI(t, http.StatusOK, `{"presignedUrl":"https://s3/put","cdnUrl":"https://cdn/x.png"}`)

	got, err := c.GeneratePresignedURL(context.Background(), "tok", "image/png")
	require.NoError(t, err)
	assert.Equal(t, &model.PresignedUpload{PresignedURL: "https://s3/put", CDNURL: "https://cdn/x.png"}, got)
	assert.Equal(t, "Bearer tok", f.auth)
	assert.Equal(t, "image/png", f.bodies[presignPath]["contentType"])
}

func TestGeneratePresignedURL_UpstreamError(t *testing.T) {
	_, c := newFakeAPI(t, http.StatusInternalServerError, `bucket unavailable`)

	_, err := c.GeneratePresignedURL(context.Background(), "tok", "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.Equal(t, "Failed to generate presigned URL: bucket unavailable", err.Error())
	assert.Equal(t, StepPresign, apperror.StepOf(err))
}

func TestRegisterImageURL(t *testing.T) {
	f, c := newFakeAPI(t, http.StatusOK, `{"imageId":"img-1"}`)

	got, err := c.RegisterImageURL(context.Background(), "tok", "https://cdn/x.png")
	require.NoError(t, err)
	assert.Equal(t, "img-1", got.ImageID)

	sent := f.bodies[registerPath]
	assert.Equal(t, "https://cdn/x.png", sent["imageUrl"])
	assert.Equal(t, false, sent["isCommonUse"])
}

func TestRegisterImageURL_UpstreamError(t *testing.T) {
	_, c := newFakeAPI(t, http.StatusBadRequest, `{"message":"bad url"}`)

	_, err := c.RegisterImageURL(context.Background(), "tok", "nope")
	assert.EqualError(t, err, `Failed to register image: {"message":"bad url"}`)
	assert.Equal(t, StepRegister, apperror.StepOf(err))
}

func TestGenerateCaptions_PreservesOrder(t *testing.T) {
	f, c := newFakeAPI(t, http.StatusOK, `[{"id":"c2","content":"B"},{"id":"c1","content":"A"}]`)

	got, err := c.GenerateCaptions(context.Background(), "tok", "img-1")
	require.NoError(t, err)
	assert.Equal(t, []model.GeneratedCaption{{ID: "c2", Content: "B"}, {ID: "c1", Content: "A"}}, got)
	assert.Equal(t, "img-1", f.bodies[captionsPath]["imageId"])
}

func TestGenerateCaptions_UpstreamError(t *testing.T) {
	_, c := newFakeAPI(t, http.StatusBadGateway, `model timeout`)

	_, err := c.GenerateCaptions(context.Background(), "tok", "img-1")
	assert.EqualError(t, err, "Failed to generate captions: model timeout")
	assert.Equal(t, StepCaptions, apperror.StepOf(err))
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 0).GeneratePresignedURL(context.Background(), "tok", "image/png")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.Equal(t, StepPresign, apperror.StepOf(err))
}

func TestIsAcceptedType(t *testing.T) {
	for _, ct := range AcceptedTypes() {
		assert.True(t, IsAcceptedType(ct), ct)
	}
	assert.True(t, IsAcceptedType("image/png; charset=binary"))

	for _, ct := range []string{"", "image/bmp", "image/svg+xml", "application/pdf", "text/plain"} {
		assert.False(t, IsAcceptedType(ct), ct)
	}
}
