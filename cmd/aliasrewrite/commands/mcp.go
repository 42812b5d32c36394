package commands

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/mcp"
	"github.com/Sumatoshi-tech/aliasrewrite/internal/observability"
)

const readHeaderTimeout = 5 * time.Second

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(g *GlobalOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - rewrite_specifiers: rewrite the module specifiers of inline code
  - list_specifiers: list the module specifiers of inline code

Aliases from the config file are used when a call brings none.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := g.open(cmd, observability.ModeMCP, func(c *observability.Config) {
				c.LogJSON = true
				c.Prometheus = metricsAddr != ""
			})
			if err != nil {
				return err
			}
			defer sess.close()

			mapping, err := sess.cfg.Mapping()
			if err != nil {
				return err
			}

			if mapping.Len() == 0 {
				mapping = nil
			}

			red, err := observability.NewREDMetrics(sess.providers.Meter)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if metricsAddr != "" {
				stop, err := serveMetrics(ctx, metricsAddr, sess.providers.MetricsHandler)
				if err != nil {
					return err
				}
				defer stop()

				sess.logger().Info("serving metrics", "addr", metricsAddr)
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  sess.logger(),
				Metrics: red,
				Tracer:  sess.providers.Tracer,
				Aliases: mapping,
			})

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

// serveMetrics exposes handler at /metrics on addr until the returned stop
// function is called.
func serveMetrics(ctx context.Context, addr string, handler http.Handler) (func(), error) {
	lis, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: readHeaderTimeout}

	// Serve returns http.ErrServerClosed once stop runs.
	go func() { _ = srv.Serve(lis) }()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readHeaderTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx) //nolint:contextcheck // the serving context is already done
	}, nil
}
