package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zerozero-0-0/portfolio/internal/atcoder"
	"github.com/zerozero-0-0/portfolio/internal/blog"
	"github.com/zerozero-0-0/portfolio/internal/cache"
	"github.com/zerozero-0-0/portfolio/internal/debuglog"
	"github.com/zerozero-0-0/portfolio/internal/github"
	"github.com/zerozero-0-0/portfolio/internal/search"
	"github.com/zerozero-0-0/portfolio/internal/server"
	"github.com/zerozero-0-0/portfolio/internal/storage"
	"github.com/zerozero-0-0/portfolio/internal/tui"
)

// backgroundTimeout bounds each deferred cache write.
const backgroundTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			defer debuglog.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			kv, err := storage.Open(ctx, cfg.Cache)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer kv.Close()

			articles, err := blog.Load(blog.Source(cfg.Blog.ContentDir), blog.NewRenderer(), time.Now())
			if err != nil {
				return fmt.Errorf("loading articles: %w", err)
			}
			engine, err := search.NewEngine(articles.Articles())
			if err != nil {
				return fmt.Errorf("indexing articles: %w", err)
			}
			defer engine.Close()
			indexed, err := engine.DocCount()
			if err != nil {
				return fmt.Errorf("counting indexed articles: %w", err)
			}

			bg := cache.NewBackground(backgroundTimeout)
			srv, err := server.New(server.Options{
				Config:      cfg.Server,
				TTL:         cfg.Cache.TTL,
				Coordinator: cache.NewCoordinator(kv, bg),
				Background:  bg,
				Languages:   github.NewClient(cfg.GitHub),
				Rating:      atcoder.NewClient(cfg.AtCoder),
				Articles:    articles,
				Search:      engine,
				Feed: blog.FeedInfo{
					Title:       cfg.Blog.SiteTitle,
					SiteURL:     cfg.Blog.SiteURL,
					Description: "Articles from " + cfg.Blog.SiteTitle,
				},
			})
			if err != nil {
				return err
			}

			if !quiet {
				tui.ShowBanner(cmd.OutOrStdout(), Version, cfg.Server.Addr)
			}
			debuglog.Infof("serving %d articles (%d indexed), cache backend %s", articles.Len(), indexed, cfg.Cache.Backend)

			return srv.Run(ctx)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip startup banner")
	return cmd
}
