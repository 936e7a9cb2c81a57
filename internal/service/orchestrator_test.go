package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/pipeline"
)

func newTestOrchestrator(api *fakeAPI, up *fakeUploader) *Orchestrator {
	return NewOrchestrator(NewUploadActions(api, testLogger()), up, testLogger())
}

func pngFile() model.ImageFile {
	return model.ImageFile{Name: "cat.png", ContentType: "image/png", Data: []byte("\x89PNG")}
}

func TestOrchestrator_HappyPath(t *testing.T) {
	api := &fakeAPI{captions: []model.GeneratedCaption{{ID: "c1", Content: "A"}, {ID: "c2", Content: "B"}}}
	up := &fakeUploader{}

	var seen []string
	res, err := newTestOrchestrator(api, up).Run(context.Background(), session("u1"), pngFile(), func(s string) {
		seen = append(seen, s)
	})
	require.NoError(t, err)

	contents := make([]string, 0, len(res.Captions))
	for _, c := range res.Captions {
		contents = append(contents, c.Content)
	}
	assert.Equal(t, []string{"A", "B"}, contents)
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, StateDone, res.State)
	assert.Empty(t, res.FailedStep)

	want := []string{StatusGeneratingURL, StatusUploading, StatusRegistering, StatusGeneratingCaptions, StatusDone}
	assert.Equal(t, want, seen)
	assert.Equal(t, want, res.StatusHistory)

	assert.Equal(t, []string{"presign:image/png", "register:https://cdn.test/1.png", "captions:img-1"}, api.calls)
	assert.Equal(t, "token-u1", api.token)
	assert.Equal(t, "https://storage.test/put/1", up.url)
	assert.Equal(t, "image/png", up.contentType)
}

func TestOrchestrator_RejectsMediaTypeBeforeAnyCall(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{}

	res, err := newTestOrchestrator(api, up).Run(context.Background(), session("u1"),
		model.ImageFile{Name: "doc.pdf", ContentType: "application/pdf"}, nil)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, apperror.MsgInvalidContentType, err.Error())
	assert.Empty(t, api.calls)
	assert.Zero(t, up.calls)
}

// The abort law: when step k fails, steps k+1..4 never run and no captions are returned.
func TestOrchestrator_AbortsAtFirstFailure(t *testing.T) {
	tests := []struct {
		name       string
		api        *fakeAPI
		up         *fakeUploader
		wantStep   string
		wantCalls  []string
		wantPuts   int
		wantErrMsg string
	}{
		{
			name:       "step 1 presign fails",
			api:        &fakeAPI{presignErr: apperror.Upstream(pipeline.StepPresign, "Failed to generate presigned URL", "quota")},
			up:         &fakeUploader{},
			wantStep:   pipeline.StepPresign,
			wantCalls:  []string{"presign:image/png"},
			wantPuts:   0,
			wantErrMsg: "Failed to generate presigned URL: quota",
		},
		{
			name:       "step 2 upload fails",
			api:        &fakeAPI{},
			up:         &fakeUploader{err: apperror.UploadTransport(pipeline.StepUpload)},
			wantStep:   pipeline.StepUpload,
			wantCalls:  []string{"presign:image/png"},
			wantPuts:   1,
			wantErrMsg: apperror.MsgUploadTransport,
		},
		{
			name:       "step 3 register fails",
			api:        &fakeAPI{registerErr: apperror.Upstream(pipeline.StepRegister, "Failed to register image", "bad url")},
			up:         &fakeUploader{},
			wantStep:   pipeline.StepRegister,
			wantCalls:  []string{"presign:image/png", "register:https://cdn.test/1.png"},
			wantPuts:   1,
			wantErrMsg: "Failed to register image: bad url",
		},
		{
			name: "step 4 captions fails",
			api: &fakeAPI{
				captions:    []model.GeneratedCaption{{ID: "x", Content: "never shown"}},
				captionsErr: apperror.Upstream(pipeline.StepCaptions, "Failed to generate captions", "timeout"),
			},
			up:         &fakeUploader{},
			wantStep:   pipeline.StepCaptions,
			wantCalls:  []string{"presign:image/png", "register:https://cdn.test/1.png", "captions:img-1"},
			wantPuts:   1,
			wantErrMsg: "Failed to generate captions: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestOrchestrator(tt.api, tt.up).Run(context.Background(), session("u1"), pngFile(), nil)

			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErrMsg)
			require.NotNil(t, res)
			assert.Equal(t, StateFailed, res.State)
			assert.Equal(t, tt.wantStep, res.FailedStep)
			assert.Empty(t, res.Status, "status is cleared on failure")
			assert.Nil(t, res.Captions, "no partial captions")
			assert.Equal(t, tt.wantCalls, tt.api.calls)
			assert.Equal(t, tt.wantPuts, tt.up.calls)
		})
	}
}

func TestOrchestrator_Unauthenticated(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{}

	res, err := newTestOrchestrator(api, up).Run(context.Background(), nil, pngFile(), nil)

	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	assert.Equal(t, apperror.MsgNotAuthenticated, err.Error())
	assert.Equal(t, pipeline.StepPresign, res.FailedStep)
	assert.Empty(t, api.calls)
	assert.Zero(t, up.calls)
}

func TestOrchestrator_EmptyCaptionList(t *testing.T) {
	res, err := newTestOrchestrator(&fakeAPI{}, &fakeUploader{}).Run(context.Background(), session("u1"), pngFile(), nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Captions)
	assert.Empty(t, res.Captions)
	assert.Equal(t, StatusDone, res.Status)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_url", StateAwaitingURL.String())
	assert.Equal(t, "generating_captions", StateGeneratingCaptions.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
