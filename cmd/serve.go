package cmd

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"neonlocal/internal/controller"
	"neonlocal/internal/mcptools"
	"neonlocal/pkg/logging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an MCP server exposing the proxy controls over stdio",
		Long: `Runs a Model Context Protocol server on stdin/stdout so agents and IDEs
can drive the proxy: start/stop, status, branch selection, driver changes,
branch reset, and connection strings are exposed as tools.

While serving, the container status is polled in the background so a proxy
that dies outside our control is reflected in tool responses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go app.controller.RunPoller(ctx, controller.DefaultPollInterval)

			s := mcptools.NewServer(rootCmd.Version, app.controller, app.selections, app.catalog)

			logging.Info("Serve", "MCP server listening on stdio")
			start := time.Now()
			err = server.ServeStdio(s)
			logging.Info("Serve", "MCP server stopped after %s", time.Since(start).Round(time.Second))
			return err
		},
	}
}
