// Package stars fetches a repository's star count from the GitHub REST API.
package stars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tinytelemetry/starboard/internal/model"
)

// ErrMissingCount is returned when the response has no usable
// stargazers_count field.
var ErrMissingCount = errors.New("stars: response has no stargazers_count")

// maxBodySize caps how much of a response body is decoded.
const maxBodySize = 4 << 20

// Fetcher returns the latest star count.
type Fetcher interface {
	FetchCount(ctx context.Context) (int64, error)
}

// TokenSource returns the bearer token to send. An empty token sends no
// Authorization header.
type TokenSource func() (string, error)

// Config configures a Client. Zero fields fall back to defaults.
type Config struct {
	BaseURL    string
	Repo       string
	UserAgent  string
	HTTPClient *http.Client
	Token      TokenSource
	Now        func() time.Time
}

// Client implements Fetcher against the repository metadata endpoint.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
	token     TokenSource
	now       func() time.Time
}

type repoResponse struct {
	StargazersCount *int64 `json:"stargazers_count"`
}

// NewClient creates a client for cfg.Repo.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = model.DefaultAPIBaseURL
	}
	repo := strings.Trim(cfg.Repo, "/")
	if repo == "" {
		repo = model.DefaultRepo
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "starboard"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		endpoint:  base + "/repos/" + repo,
		userAgent: ua,
		http:      hc,
		token:     cfg.Token,
		now:       now,
	}
}

// Endpoint returns the repository URL without the cache-busting parameter.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchCount performs one GET and returns stargazers_count.
func (c *Client) FetchCount(ctx context.Context) (int64, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("stars: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("stars: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.token != nil {
		tok, err := c.token()
		if err != nil {
			return 0, fmt.Errorf("stars: read token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("stars: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, fmt.Errorf("stars: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("stars: unexpected status %d: %.120s", resp.StatusCode, body)
	}

	var r repoResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return 0, fmt.Errorf("stars: decode response: %w", err)
	}
	if r.StargazersCount == nil {
		return 0, ErrMissingCount
	}
	if *r.StargazersCount < 0 {
		return 0, fmt.Errorf("stars: negative count %d", *r.StargazersCount)
	}
	return *r.StargazersCount, nil
}
