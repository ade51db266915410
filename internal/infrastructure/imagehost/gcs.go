package imagehost

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/pkg/helpers"
)

var ErrGCSNotConfigured = errors.New("gcs not configured")

// GCSUploader stores images in a Google Cloud Storage bucket instead of the
// third-party host. Objects are written once under a random name and served
// publicly, so they get a long cache lifetime.
type GCSUploader struct {
	Client *storage.Client
	Bucket string
	Folder string
}

func NewGCSUploader(client *storage.Client, bucket string) *GCSUploader {
	return &GCSUploader{Client: client, Bucket: bucket, Folder: "images"}
}

func (u *GCSUploader) Upload(ctx context.Context, file entity.ImageFile) (string, error) {
	if u.Client == nil || u.Bucket == "" {
		return "", ErrGCSNotConfigured
	}
	object := u.objectPath(file.Filename)
	w := u.Client.Bucket(u.Bucket).Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = file.ContentType
	w.CacheControl = "public, max-age=31536000, immutable"
	w.ChunkSize = 0
	w.Metadata = map[string]string{"original-name": file.Filename}
	if _, err := w.Write(file.Data); err != nil {
		_ = w.Close()
		return "", &UploadError{Kind: KindUnknown, Message: "storage write failed", Err: fmt.Errorf("gcs write %s: %w", object, err)}
	}
	if err := w.Close(); err != nil {
		return "", &UploadError{Kind: KindUnknown, Message: "storage write failed", Err: fmt.Errorf("gcs close %s: %w", object, err)}
	}
	return helpers.GCSPublicURL(u.Bucket, object), nil
}

func (u *GCSUploader) objectPath(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("uploads", u.Folder, uuid.NewString()+ext)
}
