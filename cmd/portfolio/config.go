package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zerozero-0-0/portfolio/internal/config"
	"github.com/zerozero-0-0/portfolio/internal/tui"
)

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "portfolio", "config.toml")
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var output string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := output
			if path == "" {
				path = defaultConfigPath()
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.Status(tui.StatusSuccess, "Generated default configuration at: "+path))
			return nil
		},
	}
	generate.Flags().StringVarP(&output, "output", "o", "", "destination (default ~/.config/portfolio/config.toml)")

	cmd.AddCommand(generate)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", tui.AppName, Version)
			fmt.Fprintln(out, "Portfolio API server")
			fmt.Fprintln(out, "github.com/zerozero-0-0/portfolio")
		},
	}
}
