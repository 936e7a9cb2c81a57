package service

import (
	"context"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/pipeline"
)

// UploadForm is the client-side state of the upload screen: the selected
// file, whether an upload is in flight, the status line, the inline error
// and the generated captions.
//
// It is not safe for concurrent use; one form belongs to one user's view.
type UploadForm struct {
	orch *Orchestrator
	file *model.ImageFile

	Loading  bool
	Status   string
	Error    string
	Captions []model.GeneratedCaption
}

func NewUploadForm(orch *Orchestrator) *UploadForm {
	return &UploadForm{orch: orch}
}

// Select sets the file to upload. An unaccepted media type sets Error and
// leaves nothing selected; an accepted one clears any prior error and captions.
func (f *UploadForm) Select(file model.ImageFile) error {
	if !pipeline.IsAcceptedType(file.ContentType) {
		f.file = nil
		f.Error = apperror.MsgInvalidContentType
		return apperror.InvalidInput("contentType", apperror.MsgInvalidContentType)
	}

	f.file = &file
	f.Error = ""
	f.Captions = nil
	return nil
}

// CanUpload reports whether the upload control is enabled.
func (f *UploadForm) CanUpload() bool {
	return f.file != nil && !f.Loading
}

// Submit runs the whole sequence for the selected file. It does nothing when
// CanUpload is false.
func (f *UploadForm) Submit(ctx context.Context, sess *auth.Session) error {
	if !f.CanUpload() {
		return nil
	}

	f.Loading = true
	f.Error = ""
	f.Captions = nil
	defer func() { f.Loading = false }()

	res, err := f.orch.Run(ctx, sess, *f.file, func(status string) { f.Status = status })
	if err != nil {
		f.Error = err.Error()
		f.Status = ""
		return err
	}

	f.Captions = res.Captions
	f.Status = res.Status
	return nil
}
