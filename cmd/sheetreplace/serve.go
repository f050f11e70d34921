package main

import (
	"github.com/spf13/cobra"

	"github.com/ideamans/go-sheetreplace/internal/server"
)

func newServeCmd(opts *rootOpts) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the POST /process-excel endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := opts.settings
			if listen != "" {
				s.Listen = listen
			}

			srv := server.New(opts.newProcessor(s.Pipeline()), &server.Config{
				Addr:           s.Listen,
				MaxUploadBytes: s.MaxUploadBytes(),
			})
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	return cmd
}
