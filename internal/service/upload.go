package service

import (
	"context"
	"log/slog"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/model"
)

// CaptionAPI is the captioning service's three authenticated endpoints.
// *pipeline.Client implements it.
type CaptionAPI interface {
	GeneratePresignedURL(ctx context.Context, token, contentType string) (*model.PresignedUpload, error)
	RegisterImageURL(ctx context.Context, token, imageURL string) (*model.UploadedImage, error)
	GenerateCaptions(ctx context.Context, token, imageID string) ([]model.GeneratedCaption, error)
}

// UploadActions are the server-side upload steps. Each is an independent
// remote call, so each checks for a session on its own.
type UploadActions struct {
	api    CaptionAPI
	logger *slog.Logger
}

func NewUploadActions(api CaptionAPI, logger *slog.Logger) *UploadActions {
	return &UploadActions{api: api, logger: logger}
}

func sessionToken(sess *auth.Session) (string, error) {
	if tok := sess.Token(); tok != "" {
		return tok, nil
	}
	return "", apperror.Unauthenticated(apperror.MsgNotAuthenticated)
}

// GeneratePresignedURL is step 1: an upload destination for contentType.
func (a *UploadActions) GeneratePresignedURL(ctx context.Context, sess *auth.Session, contentType string) (*model.PresignedUpload, error) {
	token, err := sessionToken(sess)
	if err != nil {
		return nil, err
	}

	out, err := a.api.GeneratePresignedURL(ctx, token, contentType)
	if err != nil {
		a.logger.Warn("presigned url request failed", "content_type", contentType, "error", err)
		return nil, err
	}
	return out, nil
}

// RegisterImageURL is step 3: trade the CDN URL for a durable image id.
func (a *UploadActions) RegisterImageURL(ctx context.Context, sess *auth.Session, cdnURL string) (*model.UploadedImage, error) {
	token, err := sessionToken(sess)
	if err != nil {
		return nil, err
	}

	out, err := a.api.RegisterImageURL(ctx, token, cdnURL)
	if err != nil {
		a.logger.Warn("image registration failed", "error", err)
		return nil, err
	}
	return out, nil
}

// GenerateCaptions is step 4.
func (a *UploadActions) GenerateCaptions(ctx context.Context, sess *auth.Session, imageID string) ([]model.GeneratedCaption, error) {
	token, err := sessionToken(sess)
	if err != nil {
		return nil, err
	}

	out, err := a.api.GenerateCaptions(ctx, token, imageID)
	if err != nil {
		a.logger.Warn("caption generation failed", "image_id", imageID, "error", err)
		return nil, err
	}

	a.logger.Info("captions generated", "image_id", imageID, "count", len(out))
	return out, nil
}
