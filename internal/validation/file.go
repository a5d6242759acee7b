package validation

import (
	"mime"
	"strings"

	"portfolio-catalog/internal/domain"
)

// FileConstraints defines validation rules for one class of upload.
type FileConstraints struct {
	Label            string
	AllowedMimeTypes map[string]bool
	MaxSize          int64
}

var (
	ArtworkConstraints = FileConstraints{
		Label: "artwork",
		AllowedMimeTypes: map[string]bool{
			"image/jpeg":    true,
			"image/png":     true,
			"image/gif":     true,
			"image/webp":    true,
			"image/avif":    true,
			"image/svg+xml": true,
		},
		MaxSize: 10 << 20, // 10MB
	}

	// VideoConstraints only admits containers browsers play natively.
	VideoConstraints = FileConstraints{
		Label: "video",
		AllowedMimeTypes: map[string]bool{
			"video/mp4":       true,
			"video/webm":      true,
			"video/ogg":       true,
			"video/quicktime": true,
		},
		MaxSize: 100 << 20, // 100MB
	}

	ThumbnailConstraints = FileConstraints{
		Label: "thumbnail",
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/gif":  true,
			"image/webp": true,
			"image/avif": true,
		},
		MaxSize: 5 << 20, // 5MB
	}
)

func ConstraintsFor(kind domain.MediaKind) (FileConstraints, bool) {
	switch kind {
	case domain.KindArtwork:
		return ArtworkConstraints, true
	case domain.KindVideo:
		return VideoConstraints, true
	}
	return FileConstraints{}, false
}

// NormalizeContentType lowercases the media type and drops parameters.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// ValidateFile checks a file against the constraints. Errors are *domain.ValidationError.
func ValidateFile(file domain.FileUpload, c FileConstraints) error {
	if file.Body == nil || file.Size <= 0 {
		return domain.NewValidationError("%s file is empty", c.Label)
	}
	if file.Size > c.MaxSize {
		return domain.NewValidationError("%s file too large: maximum size is %d MB", c.Label, c.MaxSize>>20)
	}
	contentType := NormalizeContentType(file.ContentType)
	if !c.AllowedMimeTypes[contentType] {
		if contentType == "" {
			contentType = "unknown"
		}
		return domain.NewValidationError("invalid %s file type: %s", c.Label, contentType)
	}
	return nil
}

// ValidateUpload runs every check for a file upload before anything touches the network.
func ValidateUpload(in domain.FileUploadInput) error {
	c, ok := ConstraintsFor(in.Kind)
	if !ok {
		return domain.NewValidationError("invalid media kind: %q", in.Kind)
	}
	if err := ValidateFile(in.File, c); err != nil {
		return err
	}
	if in.Kind == domain.KindVideo && in.Thumbnail != nil {
		if err := ValidateFile(*in.Thumbnail, ThumbnailConstraints); err != nil {
			return err
		}
	}
	return nil
}
