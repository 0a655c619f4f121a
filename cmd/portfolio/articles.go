package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zerozero-0-0/portfolio/internal/blog"
	"github.com/zerozero-0-0/portfolio/internal/search"
	"github.com/zerozero-0-0/portfolio/internal/tui"
)

func (f *rootFlags) articles() (*blog.Index, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}
	ix, err := blog.Load(blog.Source(cfg.Blog.ContentDir), blog.NewRenderer(), time.Now())
	if err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}
	return ix, nil
}

func newArticlesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "articles",
		Aliases: []string{"article", "a"},
		Short:   "Browse blog articles",
	}
	cmd.AddCommand(
		newArticlesListCmd(flags),
		newArticlesShowCmd(flags),
		newArticlesSearchCmd(flags),
	)
	return cmd
}

func newArticlesListCmd(flags *rootFlags) *cobra.Command {
	var tag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ix, err := flags.articles()
			if err != nil {
				return err
			}

			metas := ix.List()
			if tag != "" {
				metas = ix.ByTag(tag)
			}
			if asJSON {
				return encodeJSON(cmd.OutOrStdout(), metas)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.ArticleTable(metas, flags.width))
			return nil
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only articles with this tag")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newArticlesShowCmd(flags *rootFlags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <identifier|slug>",
		Short: "Render one article in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := flags.articles()
			if err != nil {
				return err
			}

			a, ok := ix.Get(args[0])
			if !ok {
				return fmt.Errorf("article %q not found", args[0])
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), a.Content)
				return nil
			}

			out, err := tui.RenderArticle(a, flags.width)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "html", false, "print the sanitized HTML instead")
	return cmd
}

func newArticlesSearchCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := flags.articles()
			if err != nil {
				return err
			}
			engine, err := search.NewEngine(ix.Articles())
			if err != nil {
				return fmt.Errorf("indexing articles: %w", err)
			}
			defer engine.Close()

			results, err := engine.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.SearchResults(results, flags.width))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")
	return cmd
}
