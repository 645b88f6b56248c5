// Package wfs provides a small OGC WFS client for GetFeature queries against
// GeoServer endpoints, version 1.1.0 key-value encoding.
package wfs

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultURL is the HSY GeoServer endpoint serving the capital-region
// building layers.
const DefaultURL = "https://kartta.hsy.fi/geoserver/wfs"

// DefaultVersion is the WFS protocol version spoken by default.
const DefaultVersion = "1.1.0"

// Client talks to a WFS endpoint.
type Client interface {
	// GetFeature runs a GetFeature request and returns the raw feature
	// document bytes.
	GetFeature(ctx context.Context, q Query) ([]byte, error)

	// Hits runs the same query with resultType=hits and returns the
	// server-side feature count without transferring features.
	Hits(ctx context.Context, q Query) (int, error)
}

// Query describes one GetFeature request.
type Query struct {
	// TypeName is the fully qualified feature type, e.g.
	// "asuminen_ja_maankaytto:pks_rakennukset_paivittyva".
	TypeName string

	// Filter narrows the result set. Nil requests the full layer.
	Filter *Filter

	// MaxFeatures caps the result size. Zero means no cap.
	MaxFeatures int

	// SRSName overrides the layer's native spatial reference system.
	SRSName string
}

// Fetcher downloads a URL with retry and backoff. internal/fetcher's
// implementations satisfy it.
type Fetcher interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Option configures the client.
type Option func(*client)

// WithURL points the client at a non-default endpoint.
func WithURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithVersion selects the WFS protocol version.
func WithVersion(v string) Option {
	return func(c *client) {
		c.version = v
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithFetcher routes requests through a retrying fetcher instead of the bare
// HTTP client. Transient failures and 5xx answers are then retried with
// backoff rather than surfaced from the first attempt.
func WithFetcher(f Fetcher) Option {
	return func(c *client) {
		c.fetcher = f
	}
}

// WithRateLimit sets the requests-per-second limit towards the endpoint.
// A burst below one is raised to one.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *client) {
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	fetcher    Fetcher
	limiter    *rate.Limiter
}

// NewClient creates a WFS client with the given options. Dump requests can
// run for minutes, so the default HTTP timeout is generous.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    DefaultURL,
		version:    DefaultVersion,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		limiter:    rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) GetFeature(ctx context.Context, q Query) ([]byte, error) {
	body, err := c.do(ctx, q, "")
	if err != nil {
		return nil, err
	}
	if exErr := checkException(body); exErr != nil {
		return nil, exErr
	}
	return body, nil
}

func (c *client) Hits(ctx context.Context, q Query) (int, error) {
	body, err := c.do(ctx, q, "hits")
	if err != nil {
		return 0, err
	}
	if exErr := checkException(body); exErr != nil {
		return 0, exErr
	}
	return parseHits(body)
}

func (c *client) do(ctx context.Context, q Query, resultType string) ([]byte, error) {
	if q.TypeName == "" {
		return nil, eris.New("wfs: query has no type name")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "wfs: rate limit")
	}

	params := url.Values{
		"service":  {"WFS"},
		"version":  {c.version},
		"request":  {"GetFeature"},
		"typename": {q.TypeName},
	}
	if q.Filter != nil {
		filter, err := q.Filter.Encode()
		if err != nil {
			return nil, err
		}
		params.Set("filter", filter)
	}
	if q.MaxFeatures > 0 {
		params.Set("maxFeatures", strconv.Itoa(q.MaxFeatures))
	}
	if q.SRSName != "" {
		params.Set("srsName", q.SRSName)
	}
	if resultType != "" {
		params.Set("resultType", resultType)
	}

	reqURL := c.baseURL + "?" + params.Encode()

	if c.fetcher != nil {
		rc, err := c.fetcher.Download(ctx, reqURL)
		if err != nil {
			return nil, eris.Wrap(err, "wfs: request")
		}
		defer rc.Close() //nolint:errcheck
		body, err := io.ReadAll(rc)
		if err != nil {
			return nil, eris.Wrap(err, "wfs: read body")
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "wfs: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "wfs: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("wfs: server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "wfs: read body")
	}
	return body, nil
}
