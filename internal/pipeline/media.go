package pipeline

import "strings"

// acceptedTypes is the exact set of media types the captioning service takes.
var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/heic": true,
}

// AcceptedTypes returns the accepted media types in a stable order.
func AcceptedTypes() []string {
	return []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif", "image/heic"}
}

// IsAcceptedType reports whether contentType may be uploaded. Parameters such
// as "; charset=binary" are not part of the match.
func IsAcceptedType(contentType string) bool {
	mt, _, _ := strings.Cut(contentType, ";")
	return acceptedTypes[strings.TrimSpace(mt)]
}
