// Package pipeline talks to the external captioning service.
//
// The service exposes three authenticated JSON endpoints, each one step of
// the upload-to-caption sequence, plus a presigned destination the image
// bytes are written to directly. Every call here is a single attempt: there
// is no retry, and a non-2xx response becomes an AppError that carries the
// response body verbatim.
package pipeline

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/model"
)

// DefaultBaseURL is the captioning service's production origin.
const DefaultBaseURL = "https://api.almostcrackd.ai"

// Step names, as recorded on AppError.Step and reported to clients.
const (
	StepPresign  = "generate-presigned-url"
	StepUpload   = "upload"
	StepRegister = "register"
	StepCaptions = "generate-captions"
)

const (
	presignPath  = "/pipeline/generate-presigned-url"
	registerPath = "/pipeline/upload-image-from-url"
	captionsPath = "/pipeline/generate-captions"
)

// Failure sentences prefixed to the upstream response body.
const (
	presignFailed  = "Failed to generate presigned URL"
	registerFailed = "Failed to register image"
	captionsFailed = "Failed to generate captions"
)

// Client calls the captioning API.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for baseURL. A zero timeout leaves the transport default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}

	return &Client{http: c}
}

type presignRequest struct {
	ContentType string `json:"contentType"`
}

type registerRequest struct {
	ImageURL    string `json:"imageUrl"`
	IsCommonUse bool   `json:"isCommonUse"`
}

type captionsRequest struct {
	ImageID string `json:"imageId"`
}

// GeneratePresignedURL asks for an upload destination for contentType.
func (c *Client) GeneratePresignedURL(ctx context.Context, token, contentType string) (*model.PresignedUpload, error) {
	var out model.PresignedUpload
	if err := c.post(ctx, token, presignPath, presignRequest{ContentType: contentType}, &out, StepPresign, presignFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterImageURL registers a CDN URL and returns the durable image id.
// Uploads from this application are never marked common-use.
func (c *Client) RegisterImageURL(ctx context.Context, token, imageURL string) (*model.UploadedImage, error) {
	var out model.UploadedImage
	if err := c.post(ctx, token, registerPath, registerRequest{ImageURL: imageURL, IsCommonUse: false}, &out, StepRegister, registerFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateCaptions runs caption generation for imageID. The captions come
// back in the order the service returned them.
func (c *Client) GenerateCaptions(ctx context.Context, token, imageID string) ([]model.GeneratedCaption, error) {
	out := []model.GeneratedCaption{}
	if err := c.post(ctx, token, captionsPath, captionsRequest{ImageID: imageID}, &out, StepCaptions, captionsFailed); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, token, path string, body, result any, step, failure string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		SetResult(result).
		ForceContentType("application/json").
		Post(path)
	if err != nil {
		return apperror.Upstream(step, failure, err.Error())
	}
	if !resp.IsSuccess() {
		return apperror.Upstream(step, failure, resp.String())
	}
	return nil
}
