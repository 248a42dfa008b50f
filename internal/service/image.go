package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
)

// MaxImageBytes bounds a decoded recipe image.
const MaxImageBytes = 5 << 20

// ImageStore persists image blobs by key and resolves them to URLs.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Backend() string
}

// ImageService decodes uploaded images and stores them.
type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// StoreDataURI decodes a "data:<mime>;base64,<payload>" URI (a bare base64
// payload is accepted too), checks the bytes are an image and stores them
// under recipes/<uuid><ext>. It returns the storage key.
func (s *ImageService) StoreDataURI(ctx context.Context, dataURI string) (string, error) {
	payload := dataURI
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ";base64,")
		if idx < 0 {
			return "", invalid("image", "image must be base64 encoded")
		}
		payload = payload[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", invalid("image", "image is not valid base64")
	}
	if len(data) == 0 {
		return "", invalid("image", "image is empty")
	}
	if len(data) > MaxImageBytes {
		return "", invalid("image", "image exceeds %d bytes", MaxImageBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", invalid("image", "unsupported image type %s", mt.String())
	}

	key := path.Join("recipes", uuid.New().String()+mt.Extension())
	if err := s.store.Put(ctx, key, data, mt.String()); err != nil {
		metrics.ImagesStored.WithLabelValues(s.store.Backend(), metrics.OutcomeError).Inc()
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	metrics.ImagesStored.WithLabelValues(s.store.Backend(), metrics.OutcomeOK).Inc()

	logging.Debug().Str("key", key).Str("content_type", mt.String()).Int("bytes", len(data)).Msg("stored recipe image")
	return key, nil
}

// URL resolves a stored key; an empty key yields an empty URL.
func (s *ImageService) URL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	u, err := s.store.URL(ctx, key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("failed to resolve image url")
		return ""
	}
	return u
}

// Remove deletes a stored image, logging rather than failing.
func (s *ImageService) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("failed to delete image")
	}
}

// S3ImageStore keeps images in an S3 bucket. With a presign expiry set the
// URLs are presigned GETs, otherwise public object URLs.
type S3ImageStore struct {
	s3            *config.S3Config
	presignExpiry time.Duration
}

func NewS3ImageStore(s3Config *config.S3Config, presignExpiry time.Duration) *S3ImageStore {
	return &S3ImageStore{s3: s3Config, presignExpiry: presignExpiry}
}

func (s *S3ImageStore) Backend() string { return "s3" }

func (s *S3ImageStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3ImageStore) URL(ctx context.Context, key string) (string, error) {
	if s.presignExpiry > 0 {
		return s.s3.GeneratePresignedURL(ctx, key, s.presignExpiry)
	}
	return s.s3.PublicURL(key), nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(key),
	})
	return err
}

// LocalImageStore writes images below root and serves them under baseURL.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	return &LocalImageStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalImageStore) Backend() string { return "local" }

func (s *LocalImageStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalImageStore) Put(_ context.Context, key string, data []byte, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *LocalImageStore) URL(_ context.Context, key string) (string, error) {
	return s.baseURL + "/" + key, nil
}

func (s *LocalImageStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
