package pipeline

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sakif/humor-hub/internal/apperror"
)

// Uploader writes raw image bytes to a presigned destination.
//
// It shares nothing with Client: the destination is a storage URL, not the
// captioning API, and it must not receive the bearer token.
type Uploader struct {
	http *resty.Client
}

func NewUploader(timeout time.Duration) *Uploader {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Uploader{http: c}
}

// Put sends data to url with the file's own media type as Content-Type.
// Any transport error or non-2xx status is an UploadTransport error.
func (u *Uploader) Put(ctx context.Context, url, contentType string, data []byte) error {
	resp, err := u.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put(url)
	if err != nil || !resp.IsSuccess() {
		return apperror.UploadTransport(StepUpload)
	}
	return nil
}
