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

func TestUploadForm_SelectAcceptedTypes(t *testing.T) {
	for _, ct := range pipeline.AcceptedTypes() {
		t.Run(ct, func(t *testing.T) {
			f := NewUploadForm(newTestOrchestrator(&fakeAPI{}, &fakeUploader{}))
			f.Error = "previous error"
			f.Captions = []model.GeneratedCaption{{ID: "old"}}

			require.NoError(t, f.Select(model.ImageFile{Name: "x", ContentType: ct}))
			assert.Empty(t, f.Error)
			assert.Nil(t, f.Captions)
			assert.True(t, f.CanUpload())
		})
	}
}

func TestUploadForm_SelectRejectedType(t *testing.T) {
	for _, ct := range []string{"image/bmp", "image/tiff", "video/mp4", ""} {
		t.Run(ct, func(t *testing.T) {
			f := NewUploadForm(newTestOrchestrator(&fakeAPI{}, &fakeUploader{}))
			require.NoError(t, f.Select(pngFile()))

			err := f.Select(model.ImageFile{Name: "x", ContentType: ct})
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
			assert.Equal(t, apperror.MsgInvalidContentType, f.Error)
			assert.False(t, f.CanUpload())
		})
	}
}

func TestUploadForm_Submit(t *testing.T) {
	api := &fakeAPI{captions: []model.GeneratedCaption{{ID: "c1", Content: "A"}, {ID: "c2", Content: "B"}}}
	f := NewUploadForm(newTestOrchestrator(api, &fakeUploader{}))
	require.NoError(t, f.Select(pngFile()))

	require.NoError(t, f.Submit(context.Background(), session("u1")))
	assert.False(t, f.Loading)
	assert.Equal(t, StatusDone, f.Status)
	assert.Empty(t, f.Error)
	assert.Len(t, f.Captions, 2)
}

func TestUploadForm_SubmitFailure(t *testing.T) {
	api := &fakeAPI{registerErr: apperror.Upstream(pipeline.StepRegister, "Failed to register image", "nope")}
	f := NewUploadForm(newTestOrchestrator(api, &fakeUploader{}))
	require.NoError(t, f.Select(pngFile()))

	require.Error(t, f.Submit(context.Background(), session("u1")))
	assert.False(t, f.Loading)
	assert.Empty(t, f.Status)
	assert.Equal(t, "Failed to register image: nope", f.Error)
	assert.Nil(t, f.Captions)
	assert.True(t, f.CanUpload(), "the whole sequence may be retried")
}

func TestUploadForm_SubmitWithoutFileIsNoop(t *testing.T) {
	api := &fakeAPI{}
	f := NewUploadForm(newTestOrchestrator(api, &fakeUploader{}))

	assert.NoError(t, f.Submit(context.Background(), session("u1")))
	assert.Empty(t, api.calls)
}
