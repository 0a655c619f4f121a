// Package atcoder reads a user's contest rating history from AtCoder.
package atcoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zerozero-0-0/portfolio/internal/cache"
	"github.com/zerozero-0-0/portfolio/internal/config"
)

var (
	ErrNoUsername    = errors.New("atcoder username is not configured")
	ErrUpstream      = errors.New("failed to fetch AtCoder data")
	ErrEmptyHistory  = errors.New("unexpected AtCoder history response: empty or non-array payload")
	ErrMissingRating = errors.New("unexpected AtCoder history response: latest entry has no numeric NewRating")
)

type Client struct {
	http      *http.Client
	baseURL   string
	username  string
	userAgent string
	now       func() time.Time
}

func NewClient(cfg config.AtCoderConfig) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		username:  cfg.Username,
		userAgent: cfg.UserAgent,
		now:       time.Now,
	}
}

func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

func (c *Client) Username() string { return c.username }

// FetchLatestRate returns NewRating of the last history entry. Entries are
// taken in the order AtCoder sends them.
func (c *Client) FetchLatestRate(ctx context.Context) (int, error) {
	if c.username == "" {
		return 0, ErrNoUsername
	}

	endpoint := fmt.Sprintf("%s/users/%s/history/json", c.baseURL, url.PathEscape(c.username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %d %s", ErrUpstream, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: reading body: %w", ErrUpstream, err)
	}

	return latestRating(body)
}

func latestRating(body []byte) (int, error) {
	var history []json.RawMessage
	if err := json.Unmarshal(body, &history); err != nil || len(history) == 0 {
		return 0, ErrEmptyHistory
	}

	var last map[string]json.RawMessage
	if err := json.Unmarshal(history[len(history)-1], &last); err != nil {
		return 0, ErrMissingRating
	}
	raw, ok := last["NewRating"]
	if !ok || string(raw) == "null" {
		return 0, ErrMissingRating
	}
	var rating float64
	if err := json.Unmarshal(raw, &rating); err != nil {
		return 0, ErrMissingRating
	}
	return int(rating), nil
}

// LatestRateResult adapts FetchLatestRate to the cache layer. Every failure
// maps to 404.
func (c *Client) LatestRateResult(ctx context.Context) cache.Result[int] {
	rating, err := c.FetchLatestRate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return cache.Canceled[int](ctx.Err())
		}
		return cache.Failure[int](err.Error(), http.StatusNotFound)
	}
	return cache.Success(rating, c.now())
}
