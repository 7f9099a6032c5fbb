package source

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

type gcsReader struct {
	client *storage.Client
}

// NewGCSReader creates a Cloud Storage client from application default credentials
func NewGCSReader(ctx context.Context) (BucketReader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &gcsReader{client: client}, nil
}

func (r *gcsReader) Read(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	rc, err := r.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("read gcs object: %w", err)
	}
	return rc, nil
}
