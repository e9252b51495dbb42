package main

import (
	"github.com/envelope-zero/tracker/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the document server",
		Long: `Runs the document server with an in-memory store.

The port is read from PORT or the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.Run(cmd.Context(), f.cfg, nil)
		},
	}
}
