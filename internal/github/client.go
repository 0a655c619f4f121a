// Package github aggregates the language byte counts of a user's GitHub
// repositories into a percentage breakdown.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/zerozero-0-0/portfolio/internal/config"
)

const acceptHeader = "application/vnd.github+json"

// Repo is the subset of the repository listing the aggregator reads.
type Repo struct {
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	Fork         bool   `json:"fork"`
	Archived     bool   `json:"archived"`
	LanguagesURL string `json:"languages_url"`
}

type Client struct {
	http      *http.Client
	baseURL   string
	username  string
	token     string
	userAgent string
	batchSize int
	now       func() time.Time
}

func NewClient(cfg config.GitHubConfig) *Client {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 5
	}
	return &Client{
		http:      &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:   strings.TrimRight(cfg.APIBaseURL, "/"),
		username:  cfg.Username,
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		batchSize: batch,
		now:       time.Now,
	}
}

// WithHTTPClient replaces the transport, mostly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

func (c *Client) Username() string { return c.username }

func (c *Client) reposURL() string {
	return fmt.Sprintf("%s/users/%s/repos?per_page=100&type=owner", c.baseURL, url.PathEscape(c.username))
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	return resp, nil
}

var linkPart = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// parseLink maps each rel of an RFC 8288 Link header to its URL.
func parseLink(header string) map[string]string {
	links := map[string]string{}
	if header == "" {
		return links
	}
	for _, part := range strings.Split(header, ",") {
		if m := linkPart.FindStringSubmatch(part); m != nil {
			links[m[2]] = m[1]
		}
	}
	return links
}
