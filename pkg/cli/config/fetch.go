package config

import (
	"time"

	"github.com/m-mizutani/modkit/pkg/infra/fetcher"
	"github.com/urfave/cli/v3"
)

// Fetch holds configuration of remote retrieval
type Fetch struct {
	Timeout      time.Duration
	UserAgent    string
	Token        string `masq:"secret"`
	TokenHosts   []string
	GCSAnonymous bool
}

// Flags returns CLI flags for fetch configuration
func (c *Fetch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "fetch-timeout",
			Usage:       "Timeout of a whole download, 0 for none",
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("MODKIT_FETCH_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "user-agent",
			Usage:       "User-Agent header of HTTP requests",
			Value:       "modkit",
			Destination: &c.UserAgent,
			Sources:     cli.EnvVars("MODKIT_USER_AGENT"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "Bearer token sent with HTTP requests, e.g. to raise GitHub rate limits",
			Destination: &c.Token,
			Sources:     cli.EnvVars("MODKIT_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.StringSliceFlag{
			Name:        "github-token-host",
			Usage:       "Host that receives the token; repeatable (default: github.com, api.github.com, objects.githubusercontent.com)",
			Destination: &c.TokenHosts,
			Sources:     cli.EnvVars("MODKIT_GITHUB_TOKEN_HOSTS"),
		},
		&cli.BoolFlag{
			Name:        "gcs-anonymous",
			Usage:       "Read gs:// URLs without credentials (public objects only)",
			Destination: &c.GCSAnonymous,
			Sources:     cli.EnvVars("MODKIT_GCS_ANONYMOUS"),
		},
	}
}

// Configure builds the fetcher. The returned function releases the GCS client.
func (c *Fetch) Configure() (*fetcher.Client, func()) {
	gcs := fetcher.NewGCSClient(c.GCSAnonymous)

	opts := []fetcher.Option{
		fetcher.WithGCS(gcs),
		fetcher.WithTimeout(c.Timeout),
	}
	if c.UserAgent != "" {
		opts = append(opts, fetcher.WithUserAgent(c.UserAgent))
	}
	if c.Token != "" {
		opts = append(opts, fetcher.WithToken(c.Token))
	}
	if len(c.TokenHosts) > 0 {
		opts = append(opts, fetcher.WithTokenHosts(c.TokenHosts...))
	}

	return fetcher.New(opts...), func() { _ = gcs.Close() }
}
