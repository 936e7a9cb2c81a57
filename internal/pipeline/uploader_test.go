package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/humor-hub/internal/apperror"
)

func TestUploaderPut(t *testing.T) {
	var gotMethod, gotType, gotAuth string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewUploader(0).Put(context.Background(), srv.URL+"/bucket/x.webp", "image/webp", []byte{0x52, 0x49, 0x46, 0x46})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "image/webp", gotType)
	assert.Empty(t, gotAuth, "presigned destination must not see the bearer token")
	assert.Equal(t, []byte{0x52, 0x49, 0x46, 0x46}, gotBody)
}

func TestUploaderPut_NonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewUploader(0).Put(context.Background(), srv.URL, "image/png", []byte("png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUploadTransport)
	assert.Equal(t, apperror.MsgUploadTransport, err.Error())
	assert.Equal(t, StepUpload, apperror.StepOf(err))
}
