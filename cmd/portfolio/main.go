package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zerozero-0-0/portfolio/internal/cache"
	"github.com/zerozero-0-0/portfolio/internal/config"
	"github.com/zerozero-0-0/portfolio/internal/debuglog"
	"github.com/zerozero-0-0/portfolio/internal/storage"
	"github.com/zerozero-0-0/portfolio/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tui.Status(tui.StatusError, err.Error()))
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
	width      int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           tui.AppName,
		Short:         "Portfolio API: GitHub language usage, AtCoder rating and blog articles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error, off)")
	root.PersistentFlags().IntVarP(&flags.width, "width", "w", 80, "terminal width for rendered output")

	root.AddCommand(
		newServeCmd(flags),
		newLanguagesCmd(flags),
		newAtCoderCmd(flags),
		newWarmCmd(flags),
		newArticlesCmd(flags),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads and validates the configuration, then configures logging.
func (f *rootFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is what the one-shot commands share: a store and a coordinator
// whose writes land before the command returns.
type session struct {
	cfg   *config.Config
	kv    storage.KV
	coord *cache.Coordinator
}

func (f *rootFlags) open(cmd *cobra.Command) (*session, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(cmd.Context(), cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return &session{cfg: cfg, kv: kv, coord: cache.NewCoordinator(kv, cache.Inline{})}, nil
}

func (s *session) Close() error {
	return s.kv.Close()
}
