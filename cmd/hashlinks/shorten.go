package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/sauerbraten/hashlinks"
)

func newShortenCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shorten <url>",
		Short: "Assign a short ID to a URL and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}

			id, err := opts.shortener(cfg).Assign(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newResolveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Print the URL a short ID maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}

			longURL, err := opts.shortener(cfg).Resolve(cmd.Context(), args[0])
			if err != nil {
				if xerrors.Is(err, hashlinks.ErrNotFound) {
					return xerrors.Errorf("unknown link ID %s", args[0])
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), longURL)
			return nil
		},
	}
}
