package source

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultRegion = "us-east-1"

// S3GetObjectAPI is the subset of the S3 client used to fetch inputs
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Reader struct {
	client S3GetObjectAPI
}

// NewS3Reader loads the shared AWS config for the profile and returns a bucket reader
func NewS3Reader(ctx context.Context, profile, region string) (BucketReader, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(DefaultRegion),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewS3ReaderFromClient(s3.NewFromConfig(cfg)), nil
}

// NewS3ReaderFromClient wraps an existing client
func NewS3ReaderFromClient(client S3GetObjectAPI) BucketReader {
	return &s3Reader{client: client}
}

func (r *s3Reader) Read(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3 object: %w", err)
	}
	return out.Body, nil
}
