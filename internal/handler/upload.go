package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/service"
	"github.com/sakif/humor-hub/internal/validation"
)

// DefaultMaxUploadBytes caps the one-shot upload body.
const DefaultMaxUploadBytes = 10 << 20

// UploadHandler exposes the three upload steps one by one, and the whole
// sequence as a single multipart request.
type UploadHandler struct {
	actions   *service.UploadActions
	orch      *service.Orchestrator
	validator *validation.Validator
	maxBytes  int64
	logger    *slog.Logger
}

func NewUploadHandler(
	actions *service.UploadActions,
	orch *service.Orchestrator,
	v *validation.Validator,
	maxBytes int64,
	logger *slog.Logger,
) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadHandler{actions: actions, orch: orch, validator: v, maxBytes: maxBytes, logger: logger}
}

type presignRequest struct {
	ContentType string `json:"contentType" validate:"required"`
}

type registerRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,http_url"`
}

type captionsRequest struct {
	ImageID string `json:"imageId" validate:"required"`
}

// HTTP: POST /api/upload/presigned-url
// REQUEST BODY: {"contentType": "image/png"}
func (h *UploadHandler) HandlePresign(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r, apperror.MsgNotAuthenticated)
	if sess == nil {
		return
	}

	var req presignRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.actions.GeneratePresignedURL(r.Context(), sess, req.ContentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HTTP: POST /api/upload/register
// REQUEST BODY: {"imageUrl": "https://cdn.example/abc.png"}
func (h *UploadHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r, apperror.MsgNotAuthenticated)
	if sess == nil {
		return
	}

	var req registerRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.actions.RegisterImageURL(r.Context(), sess, req.ImageURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HTTP: POST /api/upload/captions
// REQUEST BODY: {"imageId": "img-1"}
func (h *UploadHandler) HandleCaptions(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r, apperror.MsgNotAuthenticated)
	if sess == nil {
		return
	}

	var req captionsRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}
	captions, err := h.actions.GenerateCaptions(r.Context(), sess, req.ImageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, captions)
}

// uploadResponse is the one-shot success body.
type uploadResponse struct {
	Success bool `json:"success"`
	*service.UploadResult
}

// HandleUpload runs the full sequence for the multipart field "image".
//
// HTTP: POST /api/upload (multipart/form-data)
//
// The media type is taken from the part's Content-Type header, which is what
// the browser reports for the selected file.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, err := h.readImage(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error:   "payload_too_large",
				Message: "Image is too large",
			})
			return
		}
		writeError(w, err)
		return
	}

	onStatus := func(status string) {
		h.logger.Debug("upload status", slog.String("status", status), slog.String("file", file.Name))
	}

	res, err := h.orch.Run(r.Context(), auth.SessionFromContext(r.Context()), file, onStatus)
	if err != nil {
		status, body := errorBody(err)
		if res != nil && res.FailedStep != "" {
			body.FailedStep = res.FailedStep
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, UploadResult: res})
}

func (h *UploadHandler) readImage(r *http.Request) (model.ImageFile, error) {
	part, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.ImageFile{}, err
		}
		return model.ImageFile{}, apperror.ValidationFailed("image", "image is required")
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return model.ImageFile{}, err
	}

	return model.ImageFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
