package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// Opener opens an input by path or URI
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// BucketReader fetches one object from a bucket-style store
type BucketReader interface {
	Read(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// BucketFactory lazily creates a BucketReader on first use of its scheme
type BucketFactory func(ctx context.Context) (BucketReader, error)

// Settings configures remote access
type Settings struct {
	AWSProfile string
	AWSRegion  string
}

type multiOpener struct {
	mu        sync.Mutex
	factories map[string]BucketFactory
	readers   map[string]BucketReader
}

// NewOpener returns an Opener for local paths, s3:// and gs:// URIs
func NewOpener(settings Settings) Opener {
	return NewOpenerWithFactories(map[string]BucketFactory{
		"s3": func(ctx context.Context) (BucketReader, error) {
			return NewS3Reader(ctx, settings.AWSProfile, settings.AWSRegion)
		},
		"gs": func(ctx context.Context) (BucketReader, error) {
			return NewGCSReader(ctx)
		},
	})
}

// NewOpenerWithFactories returns an Opener with custom remote schemes
func NewOpenerWithFactories(factories map[string]BucketFactory) Opener {
	return &multiOpener{
		factories: factories,
		readers:   make(map[string]BucketReader),
	}
}

func (o *multiOpener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	scheme, bucket, key, remote, err := Split(uri)
	if err != nil {
		return nil, &domain.IOError{Path: uri, Err: err}
	}
	if !remote {
		f, err := os.Open(uri)
		if err != nil {
			return nil, &domain.IOError{Path: uri, Err: err}
		}
		return f, nil
	}

	reader, err := o.reader(ctx, scheme)
	if err != nil {
		return nil, &domain.IOError{Path: uri, Err: err}
	}

	zerolog.Ctx(ctx).Debug().Str("scheme", scheme).Str("bucket", bucket).Str("key", key).Msg("fetching remote input")
	rc, err := reader.Read(ctx, bucket, key)
	if err != nil {
		return nil, &domain.IOError{Path: uri, Err: err}
	}
	return rc, nil
}

func (o *multiOpener) reader(ctx context.Context, scheme string) (BucketReader, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if r, ok := o.readers[scheme]; ok {
		return r, nil
	}
	factory, ok := o.factories[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported scheme %q", scheme)
	}
	r, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", scheme, err)
	}
	o.readers[scheme] = r
	return r, nil
}

// Split breaks a bucket URI into its parts. Plain paths report remote=false.
func Split(uri string) (scheme, bucket, key string, remote bool, err error) {
	if !strings.Contains(uri, "://") {
		return "", "", "", false, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", "", false, err
	}
	if u.Scheme == "file" {
		return "", "", "", false, fmt.Errorf("file URIs are not supported, pass a plain path")
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", "", false, fmt.Errorf("expected %s://bucket/key", u.Scheme)
	}
	return u.Scheme, u.Host, key, true, nil
}

// Name returns the file name part of a path or URI, used to pick a parser
func Name(uri string) string {
	if _, _, key, remote, err := Split(uri); err == nil && remote {
		return path.Base(key)
	}
	return path.Base(strings.ReplaceAll(uri, `\`, "/"))
}
