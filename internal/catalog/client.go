// Package catalog talks to the third-party catalogs the site browses:
// RAWG for games, GiantBomb for characters and GameSpot for news.
//
// Every client goes through the same getJSON helper, which
//   - refuses to call out when no API key is configured,
//   - serves repeated requests from the Cache when one is set,
//   - turns transport and decoding failures into apperror.Upstream values.
//
// There are no retries. A failed call fails the request.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/gamehub/internal/apperror"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 10 * time.Minute

	// maxBodyBytes caps how much of an upstream response is read.
	maxBodyBytes = 5 << 20
	userAgent    = "gamehub/1.0"
)

var errMissingAPIKey = errors.New("catalog: API key not configured")

// Options configures a catalog client. Zero values fall back to the
// package defaults and no cache.
type Options struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Cache    Cache
	CacheTTL time.Duration
}

// client is the shared plumbing embedded by each catalog client.
type client struct {
	source   string // "RAWG", "GiantBomb", "GameSpot": used in error messages
	baseURL  string
	apiKey   string
	keyParam string // query parameter the upstream expects the key in
	http     *http.Client
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func newClient(source, defaultBaseURL, keyParam string, opts Options, logger *slog.Logger) client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cache := opts.Cache
	if cache == nil {
		cache = NoCache{}
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return client{
		source:   source,
		baseURL:  baseURL,
		apiKey:   opts.APIKey,
		keyParam: keyParam,
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger,
	}
}

// getJSON GETs baseURL+path with params and decodes the body into out.
func (c *client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return apperror.Upstream(c.source, apperror.UpstreamUnavailable, errMissingAPIKey)
	}
	if params == nil {
		params = url.Values{}
	}

	// The key is built before the API key is added, so it never reaches redis.
	key := c.cacheKey(path, params)
	if body, ok := c.cached(ctx, key); ok {
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set(c.keyParam, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("catalog: building %s request: %w", c.source, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Upstream(c.source, classify(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperror.Upstream(c.source, apperror.UpstreamBadResponse,
			fmt.Errorf("catalog: %s%s returned status %d", c.source, path, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apperror.Upstream(c.source, classify(err), err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperror.Upstream(c.source, apperror.UpstreamBadResponse,
			fmt.Errorf("catalog: decoding %s response: %w", c.source, err))
	}

	if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
		c.logger.Warn("catalog cache write failed",
			slog.String("source", c.source),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (c *client) cached(ctx context.Context, key string) ([]byte, bool) {
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("catalog cache read failed",
			slog.String("source", c.source),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return body, ok
}

// cacheKey is catalog:<source>:<sha256 of path and sorted query>.
func (c *client) cacheKey(path string, params url.Values) string {
	sum := sha256.Sum256([]byte(path + "?" + params.Encode()))
	return fmt.Sprintf("catalog:%s:%s", strings.ToLower(c.source), hex.EncodeToString(sum[:16]))
}

// classify maps a transport error to an upstream kind.
func classify(err error) apperror.UpstreamKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.UpstreamTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperror.UpstreamTimeout
	}
	return apperror.UpstreamUnavailable
}
