package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zerozero-0-0/portfolio/internal/atcoder"
	"github.com/zerozero-0-0/portfolio/internal/cache"
	"github.com/zerozero-0-0/portfolio/internal/github"
	"github.com/zerozero-0-0/portfolio/internal/langstat"
	"github.com/zerozero-0-0/portfolio/internal/storage"
	"github.com/zerozero-0-0/portfolio/internal/tui"
)

func failure[T any](res cache.CachedResult[T], def int) error {
	return fmt.Errorf("%s (status %d)", res.ErrorMessage, res.StatusOr(def))
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *session) languages(ctx context.Context) cache.CachedResult[[]langstat.Usage] {
	gh := github.NewClient(s.cfg.GitHub)
	return cache.Handle(ctx, s.coord, storage.LanguagesKey(gh.Username()), s.cfg.Cache.TTL, gh.FetchLanguageSummary)
}

func (s *session) rating(ctx context.Context) cache.CachedResult[int] {
	ac := atcoder.NewClient(s.cfg.AtCoder)
	return cache.Handle(ctx, s.coord, storage.AtCoderRateKey(ac.Username()), s.cfg.Cache.TTL, ac.LatestRateResult)
}

func newLanguagesCmd(flags *rootFlags) *cobra.Command {
	var all, asJSON bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "Show GitHub language usage across owned repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res := s.languages(cmd.Context())
			if !res.OK {
				return failure(res, 502)
			}

			usages := res.Data
			if !all {
				usages = langstat.GroupOthers(usages, nil)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return encodeJSON(out, usages)
			}
			fmt.Fprintln(out, tui.HeaderStyle.Render("Languages · "+s.cfg.GitHub.Username))
			fmt.Fprintln(out, tui.LanguageChart(usages, flags.width-tui.ChartOverhead))
			fmt.Fprintln(out, tui.Cached(res.FromCache, res.FetchedAt))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every language instead of folding unknown ones into Other")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a chart")
	return cmd
}

func newAtCoderCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "atcoder",
		Short: "Show the latest AtCoder rating",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res := s.rating(cmd.Context())
			if !res.OK {
				return failure(res, 404)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return encodeJSON(out, map[string]int{"latestRating": res.Data})
			}
			fmt.Fprintf(out, "%s %s\n", tui.HeaderStyle.Render(s.cfg.AtCoder.Username), tui.TitleStyle.Render(fmt.Sprint(res.Data)))
			fmt.Fprintln(out, tui.Cached(res.FromCache, res.FetchedAt))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newWarmCmd(flags *rootFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Populate the cache entries the server reads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tui.Status(tui.StatusInfo, tui.MsgWarming))

			if force {
				for _, key := range []string{
					storage.LanguagesKey(s.cfg.GitHub.Username),
					storage.AtCoderRateKey(s.cfg.AtCoder.Username),
				} {
					if err := s.kv.Delete(ctx, key); err != nil && !storage.IsMiss(err) {
						return fmt.Errorf("evicting %s: %w", key, err)
					}
				}
			}

			var errs []error
			report := func(key string, ok, fromCache bool, msg string) {
				if ok {
					fmt.Fprintln(out, tui.Status(tui.StatusSuccess, tui.MsgWarmed(key, fromCache)))
					return
				}
				fmt.Fprintln(out, tui.Status(tui.StatusError, key+": "+msg))
				errs = append(errs, fmt.Errorf("%s: %s", key, msg))
			}

			langs := s.languages(ctx)
			report(storage.LanguagesKey(s.cfg.GitHub.Username), langs.OK, langs.FromCache, langs.ErrorMessage)
			rate := s.rating(ctx)
			report(storage.AtCoderRateKey(s.cfg.AtCoder.Username), rate.OK, rate.FromCache, rate.ErrorMessage)

			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "evict existing entries before fetching")
	return cmd
}
