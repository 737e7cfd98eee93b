package fetcher

import (
	"context"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/types"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// GCSOpener opens objects in Google Cloud Storage
type GCSOpener interface {
	NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// GCSClient is a GCSOpener backed by cloud.google.com/go/storage. The
// storage client is created on first use.
type GCSClient struct {
	opts      []option.ClientOption
	newClient func(ctx context.Context, opts ...option.ClientOption) (*storage.Client, error)

	mu     sync.Mutex
	client *storage.Client
	closed bool
}

// NewGCSClient creates a lazily initialized GCS opener. When anonymous is
// true only public objects can be read.
func NewGCSClient(anonymous bool) *GCSClient {
	var opts []option.ClientOption
	if anonymous {
		opts = append(opts, option.WithoutAuthentication())
	}
	return &GCSClient{opts: opts, newClient: storage.NewClient}
}

// NewReader implements GCSOpener
func (x *GCSClient) NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	client, err := x.storageClient(ctx)
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// storageClient returns the shared client, creating it on first use. A
// failed creation is retried by the next call.
func (x *GCSClient) storageClient(ctx context.Context) (*storage.Client, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil, goerr.New("GCS client is closed", goerr.T(types.ErrTagNetwork))
	}
	if x.client == nil {
		client, err := x.newClient(ctx, x.opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GCS client", goerr.T(types.ErrTagNetwork))
		}
		x.client = client
	}
	return x.client, nil
}

// Close releases the underlying storage client. Later reads fail.
func (x *GCSClient) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.closed = true
	if x.client == nil {
		return nil
	}
	err := x.client.Close()
	x.client = nil
	return err
}

// ParseGCSURL splits gs://bucket/path/to/object into bucket and object name
func ParseGCSURL(url string) (string, string, error) {
	if !strings.HasPrefix(url, gcsScheme) {
		return "", "", goerr.New("not a gs:// URL", goerr.T(types.ErrTagNetwork), goerr.V("url", url))
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(url, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", goerr.New("gs:// URL must have a bucket and an object",
			goerr.T(types.ErrTagNetwork), goerr.V("url", url))
	}
	return bucket, object, nil
}
