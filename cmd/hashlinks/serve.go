package main

import (
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/sauerbraten/hashlinks"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			d := hashlinks.NewDispatcher(opts.shortener(cfg), nil)
			d.SetQuiet(cfg.Quiet)

			s := hashlinks.NewServer(d, nil)
			s.SetQuiet(cfg.Quiet)

			r := chi.NewRouter()

			s.SetupRoutes(r)

			log.Println("server running on", cfg.Addr)

			return http.ListenAndServe(cfg.Addr, r)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :5656)")

	return cmd
}

func newLambdaCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve API Gateway HTTP API events as an AWS Lambda function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}

			d := hashlinks.NewDispatcher(opts.shortener(cfg), nil)
			d.SetQuiet(cfg.Quiet)

			lambda.Start(hashlinks.LambdaHandler(d))
			return nil
		},
	}
}
