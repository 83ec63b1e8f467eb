// Package repo implements the repository client: ordered-fallback manifest
// fetching and metadata-only artifact size lookups, with an optional
// response cache in front of the network.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/depsize/pkg/cache"
	"github.com/matzehuels/depsize/pkg/errors"
	"github.com/matzehuels/depsize/pkg/httputil"
	"github.com/matzehuels/depsize/pkg/maven"
)

// Config configures a repository client.
type Config struct {
	// Repositories is the ordered list of repository base URLs tried for
	// each manifest fetch. Must not be empty.
	Repositories []string

	// Cache stores fetched manifests and artifact sizes. Nil disables
	// caching (a NullCache is used).
	Cache cache.Cache

	// CacheTTL is how long cached responses stay fresh. 0 means forever.
	CacheTTL time.Duration

	// Refresh bypasses the cache for reads; fresh responses still get stored.
	Refresh bool

	// HTTPClient overrides the default client (used by tests).
	HTTPClient *http.Client
}

// Client fetches manifest documents and artifact sizes from an ordered list
// of repositories. All methods are safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	repos   []string
	refresh bool
}

// NewClient creates a repository client from cfg.
func NewClient(cfg Config) *Client {
	c := &Client{
		http:    cfg.HTTPClient,
		cache:   cfg.Cache,
		ttl:     cfg.CacheTTL,
		repos:   cfg.Repositories,
		refresh: cfg.Refresh,
	}
	if c.http == nil {
		c.http = httputil.NewHTTPClient()
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	return c
}

// manifestEntry is the cached form of a successful manifest fetch.
type manifestEntry struct {
	Location string `json:"location"`
	Body     []byte `json:"body"`
}

// FetchManifest tries each configured repository in order and returns the
// first successful manifest document together with the location it was
// fetched from. A failure on one repository simply advances to the next;
// exhausting the list fails with NOT_FOUND_ARTIFACT.
func (c *Client) FetchManifest(ctx context.Context, coord maven.Coordinate) (string, []byte, error) {
	key := "manifest:" + coord.FullID()
	if !c.refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			var entry manifestEntry
			if err := json.Unmarshal(data, &entry); err == nil {
				return entry.Location, entry.Body, nil
			}
		}
	}

	var lastErr error
	for _, base := range c.repos {
		location := ManifestURL(base, coord)
		body, err := c.get(ctx, location)
		if err != nil {
			lastErr = err
			continue
		}
		if data, err := json.Marshal(manifestEntry{Location: location, Body: body}); err == nil {
			_ = c.cache.Set(ctx, key, data, c.ttl)
		}
		return location, body, nil
	}

	if lastErr != nil {
		return "", nil, errors.Wrap(errors.ErrCodeNotFound, lastErr,
			"no configured repository has a manifest for %s", coord.FullID())
	}
	return "", nil, errors.New(errors.ErrCodeNotFound,
		"no configured repository has a manifest for %s", coord.FullID())
}

// FetchSize issues a metadata-only request against the artifact location
// derived from manifestLocation and returns the declared content length.
// A failed request, non-success status, or missing length header all
// report ok=false; the caller decides how to treat an undetermined size.
func (c *Client) FetchSize(ctx context.Context, manifestLocation string) (int64, bool) {
	artifactURL := ArtifactURL(manifestLocation)
	key := "size:" + artifactURL
	if !c.refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
				return n, true
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, artifactURL, nil)
	if err != nil {
		return 0, false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, false
	}
	if resp.ContentLength < 0 {
		return 0, false
	}

	_ = c.cache.Set(ctx, key, []byte(strconv.FormatInt(resp.ContentLength, 10)), c.ttl)
	return resp.ContentLength, true
}

// get performs a GET with retry on transient failures. 5xx responses and
// transport errors retry with backoff; 404 and other client errors do not.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", url))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500:
			return httputil.Retryable(fmt.Errorf("GET %s: status %d", url, resp.StatusCode))
		default:
			return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	return body, err
}
