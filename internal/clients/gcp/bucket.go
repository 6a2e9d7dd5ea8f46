package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/yungbote/slangify-backend/internal/platform/ctxutil"
	"github.com/yungbote/slangify-backend/internal/platform/envutil"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

// Bucket stores chat images and avatars and hands back a public URL that is
// recorded on the owning row.
type Bucket interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

type bucketService struct {
	log        *logger.Logger
	client     *storage.Client
	bucketName string
}

func NewBucket(log *logger.Logger) (Bucket, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Bucket")

	bucketName := envutil.String("GCS_BUCKET_NAME", "")
	if bucketName == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET_NAME")
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	return &bucketService{log: slog, client: client, bucketName: bucketName}, nil
}

func (bs *bucketService) Close() error {
	if bs == nil || bs.client == nil {
		return nil
	}
	return bs.client.Close()
}

func (bs *bucketService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	key = strings.TrimLeft(key, "/")
	w := bs.client.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("bucket write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("bucket close: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key), nil
}

func (bs *bucketService) Delete(ctx context.Context, key string) error {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	key = strings.TrimLeft(key, "/")
	return bs.client.Bucket(bs.bucketName).Object(key).Delete(ctx)
}
