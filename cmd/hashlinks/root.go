package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sauerbraten/hashlinks"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	configPath string
	backend    string
	dsn        string
	quiet      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "hashlinks",
		Short:         "hashlinks - hash-based short links",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "index backend (memory|sqlite|file|dynamodb)")
	cmd.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "SQLite DSN or links file path")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors and collisions")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newLambdaCommand(opts))
	cmd.AddCommand(newShortenCommand(opts))
	cmd.AddCommand(newResolveCommand(opts))

	return cmd
}

// config loads the config file and applies flags on top of it.
func (opts *rootOptions) config() (hashlinks.Config, error) {
	cfg, err := hashlinks.LoadConfig(opts.configPath)
	if err != nil {
		return hashlinks.Config{}, err
	}

	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.dsn != "" {
		cfg.DSN = opts.dsn
	}
	if opts.quiet {
		cfg.Quiet = true
	}

	return cfg, cfg.Validate()
}

// shortener builds a Shortener whose index is opened on first use.
func (opts *rootOptions) shortener(cfg hashlinks.Config) *hashlinks.Shortener {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	index := hashlinks.NewLazyIndex(func() (hashlinks.Index, error) {
		return hashlinks.OpenIndex(context.Background(), cfg, logger)
	})

	s := hashlinks.NewShortener(index, logger)
	s.SetQuiet(cfg.Quiet)
	return s
}
