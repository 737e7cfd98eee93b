package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/types"
	"github.com/m-mizutani/modkit/pkg/infra/fsutil"
)

const defaultUserAgent = "modkit"

// DefaultTokenHosts are the hosts that receive the bearer token unless
// WithTokenHosts replaces them
var DefaultTokenHosts = []string{
	"github.com",
	"api.github.com",
	"objects.githubusercontent.com",
}

// config holds internal fetcher configuration
type config struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	token      string
	tokenHosts []string
	gcs        GCSOpener
}

// Option is a functional option for Client configuration
type Option func(*config)

// WithHTTPClient replaces the HTTP client used for http and https URLs
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithTimeout limits a whole HTTP request including the body transfer. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

// WithToken sends the token as a bearer credential, e.g. for GitHub release assets
func WithToken(token string) Option {
	return func(c *config) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTokenHosts limits which hosts receive the token. Ports are ignored.
func WithTokenHosts(hosts ...string) Option {
	return func(c *config) {
		c.tokenHosts = hosts
	}
}

// WithGCS enables gs://bucket/object URLs
func WithGCS(opener GCSOpener) Option {
	return func(c *config) {
		c.gcs = opener
	}
}

// Client retrieves remote resources and writes them to local files
type Client struct {
	httpClient *http.Client
	userAgent  string
	token      string
	tokenHosts map[string]struct{}
	gcs        GCSOpener
}

// New creates a new Client
func New(opts ...Option) *Client {
	cfg := &config{
		httpClient: &http.Client{},
		userAgent:  defaultUserAgent,
		tokenHosts: DefaultTokenHosts,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := cfg.httpClient
	if cfg.timeout > 0 {
		copied := *httpClient
		copied.Timeout = cfg.timeout
		httpClient = &copied
	}

	tokenHosts := make(map[string]struct{}, len(cfg.tokenHosts))
	for _, host := range cfg.tokenHosts {
		tokenHosts[strings.ToLower(host)] = struct{}{}
	}

	return &Client{
		httpClient: httpClient,
		userAgent:  cfg.userAgent,
		token:      cfg.token,
		tokenHosts: tokenHosts,
		gcs:        cfg.gcs,
	}
}

// Fetch returns the body of url. Transport failures and non-2xx responses
// are both errors, so an error page is never returned as content.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, gcsScheme) {
		return c.fetchGCS(ctx, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request",
			goerr.T(types.ErrTagNetwork), goerr.V("url", url))
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.sendsToken(req) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download",
			goerr.T(types.ErrTagNetwork), goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("unexpected HTTP status",
			goerr.T(types.ErrTagNetwork),
			goerr.T(types.ErrTagHTTPStatus),
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", strings.TrimSpace(string(body))))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body",
			goerr.T(types.ErrTagNetwork), goerr.V("url", url))
	}

	ctxlog.From(ctx).Debug("Fetched resource", "url", url, "size_bytes", len(data))
	return data, nil
}

// sendsToken reports whether req targets a host allowed to see the token
func (c *Client) sendsToken(req *http.Request) bool {
	if c.token == "" {
		return false
	}
	_, ok := c.tokenHosts[strings.ToLower(req.URL.Hostname())]
	return ok
}

// Persist writes data to destPath, creating missing parent directories. The
// data goes to a sibling temp file first, so a failed write leaves any
// previous file at destPath as it was.
func (c *Client) Persist(ctx context.Context, data []byte, destPath string) error {
	if _, err := fsutil.EnsureParentDir(destPath); err != nil {
		return err
	}

	tmpPath := filepath.Join(filepath.Dir(destPath),
		"."+filepath.Base(destPath)+"."+uuid.New().String()[:8]+".tmp")

	if err := os.WriteFile(tmpPath, data, fsutil.FilePerm); err != nil {
		_ = os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to write file",
			goerr.T(types.ErrTagIO), goerr.V("path", destPath))
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to move file into place",
			goerr.T(types.ErrTagIO), goerr.V("path", destPath))
	}

	ctxlog.From(ctx).Debug("Persisted file", "path", destPath, "size_bytes", len(data))
	return nil
}

// Download fetches url and persists the body to destPath
func (c *Client) Download(ctx context.Context, url, destPath string) error {
	data, err := c.Fetch(ctx, url)
	if err != nil {
		return err
	}
	return c.Persist(ctx, data, destPath)
}

func (c *Client) fetchGCS(ctx context.Context, url string) ([]byte, error) {
	if c.gcs == nil {
		return nil, goerr.New("gs:// URLs are not enabled",
			goerr.T(types.ErrTagNetwork), goerr.V("url", url))
	}

	bucket, object, err := ParseGCSURL(url)
	if err != nil {
		return nil, err
	}

	r, err := c.gcs.NewReader(ctx, bucket, object)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, goerr.Wrap(err, "object not found",
				goerr.T(types.ErrTagNetwork),
				goerr.T(types.ErrTagHTTPStatus),
				goerr.V("url", url))
		}
		return nil, goerr.Wrap(err, "failed to open object",
			goerr.T(types.ErrTagNetwork), goerr.V("url", url))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object",
			goerr.T(types.ErrTagNetwork), goerr.V("url", url))
	}

	ctxlog.From(ctx).Debug("Fetched object", "url", url, "size_bytes", len(data))
	return data, nil
}
