// internal/adapters/out/gcs/image_store_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"

	"storefront/internal/application/usecase"
	"storefront/internal/domain/common"
)

var ErrUnsupportedImage = fmt.Errorf("%w: unsupported image type", common.ErrInvalidInput)

// MaxImageBytes bounds one upload.
const MaxImageBytes = 10 << 20

// ImageStoreGCS stores catalog images in one bucket.
//
// Layout:
// - objectPath: {folder}/{random id}-{fileName}, e.g. products/{productId}/3f2a...-front.png
// - PublicID is the object path; URL is PublicBaseURL/bucket/objectPath
//
// Public access:
//   - The bucket is expected to grant "allUsers: Storage Object Viewer" (uniform access);
//     no per-object ACL is set.
type ImageStoreGCS struct {
	Client *storage.Client
	Bucket string
	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string
}

var _ usecase.ImageStore = (*ImageStoreGCS)(nil)

func NewImageStoreGCS(client *storage.Client, bucket string) *ImageStoreGCS {
	return &ImageStoreGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: "https://storage.googleapis.com",
	}
}

func (s *ImageStoreGCS) bucket() (*storage.BucketHandle, error) {
	if s == nil || s.Client == nil {
		return nil, errors.New("image_store_gcs: storage client is nil")
	}
	if s.Bucket == "" {
		return nil, errors.New("image_store_gcs: bucket is empty")
	}
	return s.Client.Bucket(s.Bucket), nil
}

// Upload writes r to a new object under folder.
func (s *ImageStoreGCS) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (common.Image, error) {
	if _, ok := extensionForMIME(contentType); !ok {
		return common.Image{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}
	bh, err := s.bucket()
	if err != nil {
		return common.Image{}, err
	}

	name := sanitizePathSegment(filename)
	if name == "" {
		name = "image"
	}
	name = ensureExtensionByMIME(name, contentType)
	objectPath := newObjectID() + "-" + name
	if dir := sanitizeFolder(folder); dir != "" {
		objectPath = dir + "/" + objectPath
	}

	// cancelling wctx aborts the upload without committing the object
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := bh.Object(objectPath).NewWriter(wctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	n, err := io.Copy(w, io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		cancel()
		_ = w.Close()
		return common.Image{}, fmt.Errorf("image_store_gcs: write %s: %w", objectPath, err)
	}
	if n > MaxImageBytes {
		cancel()
		_ = w.Close()
		return common.Image{}, fmt.Errorf("%w: image exceeds %d bytes", common.ErrInvalidInput, MaxImageBytes)
	}
	if err := w.Close(); err != nil {
		return common.Image{}, fmt.Errorf("image_store_gcs: close %s: %w", objectPath, err)
	}

	slog.InfoContext(ctx, "[gcs] image uploaded", "bucket", s.Bucket, "object", objectPath, "bytes", n)
	return common.Image{PublicID: objectPath, URL: s.PublicURL(objectPath)}, nil
}

// Delete removes an object. A missing object is not an error.
func (s *ImageStoreGCS) Delete(ctx context.Context, publicID string) error {
	obj := strings.TrimSpace(publicID)
	if obj == "" {
		return nil
	}
	bh, err := s.bucket()
	if err != nil {
		return err
	}
	if err := bh.Object(obj).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

// PublicURL builds the public https URL of an object.
func (s *ImageStoreGCS) PublicURL(objectPath string) string {
	base := strings.TrimRight(strings.TrimSpace(s.PublicBaseURL), "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	segs := strings.Split(objectPath, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return base + "/" + s.Bucket + "/" + strings.Join(segs, "/")
}
