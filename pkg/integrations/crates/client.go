package crates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/cratemap/pkg/buildinfo"
	"github.com/matzehuels/cratemap/pkg/cache"
	"github.com/matzehuels/cratemap/pkg/integrations"
)

const (
	defaultBaseURL = "https://crates.io"
	defaultTimeout = 30 * time.Second
	defaultTTL     = 24 * time.Hour
)

// Options configures a crates.io client. Zero values select defaults.
type Options struct {
	// BaseURL is the registry root, without the /api/v1 suffix.
	BaseURL string
	// UserAgent identifies this tool per crates.io crawler policy.
	UserAgent string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// Cache stores version lookups across runs. Nil disables caching.
	Cache cache.Cache
	// TTL is how long cached responses stay valid.
	TTL time.Duration
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o Options) WithDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = buildinfo.UserAgent()
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	return o
}

// Client provides access to the crates.io package registry API.
//
// Every request is a single attempt; there are no retries. crates.io
// requires a User-Agent header, which this client sets automatically.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client from the given options. All cache
// keys the client writes are scoped under the "crates:" namespace so the
// backend can be shared with other integrations.
func NewClient(opts Options) *Client {
	opts = opts.WithDefaults()
	headers := map[string]string{"User-Agent": opts.UserAgent}
	scoped := cache.NewScoped(opts.Cache, "crates:")
	return &Client{
		Client:  integrations.NewClient(opts.Timeout, scoped, opts.TTL, headers),
		baseURL: opts.BaseURL,
	}
}

// LatestVersion resolves the newest published version of a crate. It prefers
// the latest stable release and falls back to the overall max version for
// crates that have only pre-releases.
//
// Returns [integrations.ErrNotFound] if the crate doesn't exist.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	var version string
	err := c.Cached(ctx, name, &version, func() error {
		var data crateResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/api/v1/crates/%s", c.baseURL, name), &data); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: crate %s", err, name)
			}
			return err
		}
		version = data.Crate.MaxStableVersion
		if version == "" {
			version = data.Crate.MaxVersion
		}
		if version == "" {
			return fmt.Errorf("crate %s has no published versions", name)
		}
		return nil
	})
	return version, err
}

// DownloadTo fetches the source tarball of a crate version and unpacks it
// into dir. The archive streams straight to disk and is never cached.
func (c *Client) DownloadTo(ctx context.Context, name, version, dir string) error {
	url := fmt.Sprintf("%s/api/v1/crates/%s/%s/download", c.baseURL, name, version)
	body, err := c.GetBody(ctx, url)
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s@%s", err, name, version)
		}
		return err
	}
	defer body.Close()
	return extractTarGz(body, dir)
}

type crateResponse struct {
	Crate struct {
		Name             string `json:"name"`
		MaxVersion       string `json:"max_version"`
		MaxStableVersion string `json:"max_stable_version"`
	} `json:"crate"`
}
