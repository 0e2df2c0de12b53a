package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "origami",
		Short: "Run an origami web service",
		Long: `origami bootstraps a web service with the Origami conventions:
static assets, views, request logging, Sentry, Graphite metrics and the
/__about, /__gtg and /__health endpoints.

Configuration comes from flags, then environment variables, then defaults.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newFiltersCmd())
	return root
}
