package model

// PresignedUpload is the result of the first pipeline step: a short-lived
// destination for the raw bytes and the stable URL the image will be served from.
type PresignedUpload struct {
	PresignedURL string `json:"presignedUrl"`
	CDNURL       string `json:"cdnUrl"`
}

// UploadedImage is the durable identity the pipeline assigns on registration.
// The application holds it only long enough to request caption generation.
type UploadedImage struct {
	ImageID string `json:"imageId"`
}

// ImageFile is one locally selected image: its declared media type and bytes.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}
