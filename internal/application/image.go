package application

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

// DefaultMaxImageBytes is the largest image accepted for upload (5 MiB).
const DefaultMaxImageBytes int64 = 5 * 1024 * 1024

// ImageUploader turns a selected image into a public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file entity.ImageFile) (string, error)
}

// ValidationError lists the offending fields with a message each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		for f, msg := range e.Fields {
			return f + " " + msg
		}
	}
	return "please fill in all required fields"
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ValidateImage checks the MIME type and size of a file before any upload.
func ValidateImage(f *entity.ImageFile, maxBytes int64) error {
	if f == nil {
		return invalid("image", "is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	ct := f.ContentType
	if (ct == "" || ct == "application/octet-stream") && len(f.Data) > 0 {
		ct = http.DetectContentType(f.Data)
	}
	if !strings.HasPrefix(strings.ToLower(ct), "image/") {
		return invalid("image", "must be an image file")
	}
	size := f.Size
	if size == 0 {
		size = int64(len(f.Data))
	}
	if size > maxBytes {
		return invalid("image", fmt.Sprintf("must be %d MB or smaller", maxBytes/(1024*1024)))
	}
	return nil
}

// ImageSelection holds the image picked in a form. A rejected selection leaves
// the previous file in place.
type ImageSelection struct {
	MaxBytes int64
	file     *entity.ImageFile
}

// Select validates f and, when valid, makes it the selected file.
func (s *ImageSelection) Select(f *entity.ImageFile) error {
	if err := ValidateImage(f, s.MaxBytes); err != nil {
		return err
	}
	s.file = f
	return nil
}

// Selected returns the current file or nil.
func (s *ImageSelection) Selected() *entity.ImageFile {
	return s.file
}

func (s *ImageSelection) Clear() { s.file = nil }

// uploadSelected uploads the selected image, if any, and returns its URL.
func uploadSelected(ctx context.Context, f *flow, up ImageUploader, sel *ImageSelection) (string, error) {
	file := sel.Selected()
	if file == nil {
		return "", nil
	}
	if up == nil {
		return "", fmt.Errorf("no image uploader configured")
	}
	f.enter(PhaseUploading)
	return up.Upload(ctx, *file)
}
