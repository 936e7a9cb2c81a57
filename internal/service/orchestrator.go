package service

import (
	"context"
	"log/slog"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/pipeline"
)

// Status lines shown to the user while an upload runs.
const (
	StatusGeneratingURL      = "Generating upload URL..."
	StatusUploading          = "Uploading image..."
	StatusRegistering        = "Registering image..."
	StatusGeneratingCaptions = "Generating captions... (this may take a moment)"
	StatusDone               = "Done!"
)

// State is one position in the upload sequence.
//
//	AwaitingURL → Uploading → Registering → GeneratingCaptions → Done
//	     ↓            ↓            ↓                ↓
//	   Failed       Failed       Failed           Failed
type State int

const (
	StateAwaitingURL State = iota
	StateUploading
	StateRegistering
	StateGeneratingCaptions
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingURL:
		return "awaiting_url"
	case StateUploading:
		return "uploading"
	case StateRegistering:
		return "registering"
	case StateGeneratingCaptions:
		return "generating_captions"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s State) terminal() bool {
	return s == StateDone || s == StateFailed
}

// UploadSteps are the three authenticated steps. *UploadActions implements it.
type UploadSteps interface {
	GeneratePresignedURL(ctx context.Context, sess *auth.Session, contentType string) (*model.PresignedUpload, error)
	RegisterImageURL(ctx context.Context, sess *auth.Session, cdnURL string) (*model.UploadedImage, error)
	GenerateCaptions(ctx context.Context, sess *auth.Session, imageID string) ([]model.GeneratedCaption, error)
}

// ImageUploader writes bytes to a presigned destination. *pipeline.Uploader implements it.
type ImageUploader interface {
	Put(ctx context.Context, url, contentType string, data []byte) error
}

// StatusFunc is called with each status line before the step it announces starts.
type StatusFunc func(status string)

// UploadResult is the outcome of one Orchestrator run.
//
// On success State is StateDone, Status is StatusDone and Captions holds the
// generated captions in upstream order. On failure State is StateFailed,
// FailedStep names the step, Status is cleared and Captions is nil.
type UploadResult struct {
	State         State                    `json:"-"`
	FailedStep    string                   `json:"failedStep,omitempty"`
	Status        string                   `json:"status"`
	StatusHistory []string                 `json:"statusHistory"`
	Captions      []model.GeneratedCaption `json:"captions"`
}

// Orchestrator drives the four-step upload sequence for one image. Steps run
// strictly in order and the first failure ends the run. There is no retry and
// no resumption: callers start over from the first step.
type Orchestrator struct {
	steps    UploadSteps
	uploader ImageUploader
	logger   *slog.Logger
}

func NewOrchestrator(steps UploadSteps, uploader ImageUploader, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{steps: steps, uploader: uploader, logger: logger}
}

// run carries the data each state hands to the next.
type run struct {
	sess      *auth.Session
	file      model.ImageFile
	presigned *model.PresignedUpload
	image     *model.UploadedImage
	result    UploadResult
	report    StatusFunc
}

func (r *run) announce(status string) {
	r.result.Status = status
	r.result.StatusHistory = append(r.result.StatusHistory, status)
	if r.report != nil {
		r.report(status)
	}
}

// Run uploads file and returns its generated captions.
//
// A file whose media type is not accepted is rejected with InvalidInput
// before any network call. Otherwise the returned result is never nil, even
// when err is not, so callers can show the failed step and status history.
func (o *Orchestrator) Run(ctx context.Context, sess *auth.Session, file model.ImageFile, onStatus StatusFunc) (*UploadResult, error) {
	if !pipeline.IsAcceptedType(file.ContentType) {
		return nil, apperror.InvalidInput("contentType", apperror.MsgInvalidContentType)
	}

	r := &run{
		sess:   sess,
		file:   file,
		report: onStatus,
		result: UploadResult{State: StateAwaitingURL, StatusHistory: []string{}},
	}

	var err error
	for !r.result.State.terminal() {
		var next State
		next, err = o.advance(ctx, r)
		if err != nil {
			r.result.FailedStep = stepFor(r.result.State, err)
			r.result.State = StateFailed
			r.result.Status = ""
			r.result.Captions = nil
			o.logger.Warn("upload failed",
				slog.String("step", r.result.FailedStep),
				slog.String("file", file.Name),
				slog.String("error", err.Error()),
			)
			break
		}
		r.result.State = next
	}

	return &r.result, err
}

// advance executes the current state's step and returns the next state.
func (o *Orchestrator) advance(ctx context.Context, r *run) (State, error) {
	switch r.result.State {
	case StateAwaitingURL:
		r.announce(StatusGeneratingURL)
		p, err := o.steps.GeneratePresignedURL(ctx, r.sess, r.file.ContentType)
		if err != nil {
			return StateFailed, err
		}
		r.presigned = p
		return StateUploading, nil

	case StateUploading:
		r.announce(StatusUploading)
		if err := o.uploader.Put(ctx, r.presigned.PresignedURL, r.file.ContentType, r.file.Data); err != nil {
			return StateFailed, err
		}
		return StateRegistering, nil

	case StateRegistering:
		r.announce(StatusRegistering)
		img, err := o.steps.RegisterImageURL(ctx, r.sess, r.presigned.CDNURL)
		if err != nil {
			return StateFailed, err
		}
		r.image = img
		return StateGeneratingCaptions, nil

	case StateGeneratingCaptions:
		r.announce(StatusGeneratingCaptions)
		captions, err := o.steps.GenerateCaptions(ctx, r.sess, r.image.ImageID)
		if err != nil {
			return StateFailed, err
		}
		if captions == nil {
			captions = []model.GeneratedCaption{}
		}
		r.result.Captions = captions
		r.announce(StatusDone)
		return StateDone, nil
	}

	return StateFailed, apperror.Store("upload: invalid state " + r.result.State.String())
}

// stepFor names the failing step. Errors from the pipeline carry their own
// step; errors without one (an absent session, say) take the state's step.
func stepFor(s State, err error) string {
	if step := apperror.StepOf(err); step != "" {
		return step
	}
	switch s {
	case StateAwaitingURL:
		return pipeline.StepPresign
	case StateUploading:
		return pipeline.StepUpload
	case StateRegistering:
		return pipeline.StepRegister
	case StateGeneratingCaptions:
		return pipeline.StepCaptions
	}
	return ""
}
