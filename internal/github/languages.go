package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sourcegraph/conc/iter"

	"github.com/zerozero-0-0/portfolio/internal/cache"
	"github.com/zerozero-0-0/portfolio/internal/debuglog"
	"github.com/zerozero-0-0/portfolio/internal/langstat"
)

const (
	msgRateLimited = "GitHub API rate limit exceeded"
	msgNoLanguages = "No language data found across repositories."
)

// StatusError is a non-2xx answer from the repository listing.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// FetchLanguageSummary lists every repository of the user, drops forks and
// archived ones, sums their language bytes and returns the percentage
// breakdown. Any repository whose languages could not be fetched fails the
// whole summary; partial data is never returned.
func (c *Client) FetchLanguageSummary(ctx context.Context) cache.Result[[]langstat.Usage] {
	if c.username == "" {
		return cache.Failure[[]langstat.Usage]("GitHub username is not configured", http.StatusInternalServerError)
	}

	repos, err := c.ListRepos(ctx)
	if err != nil {
		return listFailure(ctx, err)
	}

	active := Active(repos)
	debuglog.Debugf("github: %d repositories, %d active", len(repos), len(active))

	totals, res := c.aggregate(ctx, active)
	if res != nil {
		return *res
	}
	if totals.Len() == 0 {
		return cache.Failure[[]langstat.Usage](msgNoLanguages, http.StatusNotFound)
	}

	return cache.Success(langstat.CalcPercentage(totals), c.now())
}

func listFailure(ctx context.Context, err error) cache.Result[[]langstat.Usage] {
	if ctx.Err() != nil {
		return cache.Canceled[[]langstat.Usage](ctx.Err())
	}
	var se *StatusError
	if errors.As(err, &se) {
		return cache.Failure[[]langstat.Usage](se.Message, se.StatusCode)
	}
	return cache.Failure[[]langstat.Usage](fmt.Sprintf("Failed to fetch repos: %v", err), http.StatusBadGateway)
}

// ListRepos follows the rel="next" links of the repository listing until
// the last page.
func (c *Client) ListRepos(ctx context.Context) ([]Repo, error) {
	var repos []Repo

	next := c.reposURL()
	for next != "" {
		resp, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			msg := "Failed to fetch repos: " + http.StatusText(resp.StatusCode)
			if resp.StatusCode == http.StatusForbidden {
				msg = msgRateLimited
			}
			return nil, &StatusError{StatusCode: resp.StatusCode, Message: msg}
		}

		var page []Repo
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding repository page: %w", err)
		}
		repos = append(repos, page...)

		next = parseLink(resp.Header.Get("Link"))["next"]
	}

	return repos, nil
}

// Active drops forks and archived repositories.
func Active(repos []Repo) []Repo {
	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		if r.Fork || r.Archived {
			continue
		}
		out = append(out, r)
	}
	return out
}

type outcomeKind int

const (
	outcomeData outcomeKind = iota
	outcomeSkipped
	outcomeRejected
	outcomeCanceled
)

type outcome struct {
	kind   outcomeKind
	totals *langstat.Totals
	err    error
}

// aggregate fetches languages in sequential batches of batchSize. Every
// request of a batch settles before its outcomes are examined, and the next
// batch only starts once the current one had no rejections.
func (c *Client) aggregate(ctx context.Context, repos []Repo) (*langstat.Totals, *cache.Result[[]langstat.Usage]) {
	totals := langstat.NewTotals()
	mapper := iter.Mapper[Repo, outcome]{MaxGoroutines: c.batchSize}

	rejected := 0
	for start := 0; start < len(repos); start += c.batchSize {
		batch := repos[start:min(start+c.batchSize, len(repos))]
		outcomes := mapper.Map(batch, func(r *Repo) outcome {
			return c.repoLanguages(ctx, *r)
		})

		canceled := false
		for i, o := range outcomes {
			switch o.kind {
			case outcomeData:
				langstat.Add(totals, o.totals)
			case outcomeSkipped:
			case outcomeRejected:
				rejected++
				debuglog.Warnf("github: languages for %s: %v", batch[i].FullName, o.err)
			case outcomeCanceled:
				canceled = true
			}
		}

		if canceled || ctx.Err() != nil {
			res := cache.Canceled[[]langstat.Usage](ctx.Err())
			return nil, &res
		}
		if rejected > 0 {
			res := cache.Failure[[]langstat.Usage](
				fmt.Sprintf("Failed to fetch languages for %d repositories.", rejected),
				http.StatusBadGateway,
			)
			return nil, &res
		}
	}

	return totals, nil
}

func (c *Client) repoLanguages(ctx context.Context, repo Repo) outcome {
	resp, err := c.get(ctx, repo.LanguagesURL)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{kind: outcomeCanceled, err: err}
		}
		return outcome{kind: outcomeRejected, err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusAccepted:
		debuglog.Debugf("github: languages for %s still being computed", repo.FullName)
		_, _ = io.Copy(io.Discard, resp.Body)
		return outcome{kind: outcomeSkipped}
	case resp.StatusCode == http.StatusNoContent:
		debuglog.Debugf("github: %s is empty", repo.FullName)
		return outcome{kind: outcomeSkipped}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return outcome{kind: outcomeRejected, err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	totals := langstat.NewTotals()
	if err := json.NewDecoder(resp.Body).Decode(totals); err != nil {
		if ctx.Err() != nil {
			return outcome{kind: outcomeCanceled, err: err}
		}
		return outcome{kind: outcomeRejected, err: fmt.Errorf("decoding languages: %w", err)}
	}
	return outcome{kind: outcomeData, totals: totals}
}
