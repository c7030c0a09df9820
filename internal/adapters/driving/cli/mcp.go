package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driving/mcp"
	"github.com/custodia-labs/rawrepo-update/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can submit
records to the update flow and inspect the repository.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Use --metrics-addr to expose Prometheus metrics while the server runs.

Examples:
  # Stdio mode (default)
  rawrepo mcp serve

  # HTTP mode with metrics
  rawrepo mcp serve --port 8080 --metrics-addr :9090`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("metrics-addr", "", "address serving /metrics (empty = disabled)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return fmt.Errorf("getting metrics-addr flag: %w", err)
	}

	if readinessService != nil {
		if err := readinessService.Ready(cmd.Context()); err != nil {
			return fmt.Errorf("service not ready: %w", err)
		}
	}

	ports := &mcp.Ports{
		Update:  updateService,
		Records: recordService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if metricsAddr != "" {
		if metricsHandler == nil {
			return errors.New("metrics not configured")
		}
		go func() {
			if err := serveMetrics(ctx, metricsAddr, metricsHandler); err != nil {
				logger.Error("metrics server: %v", err)
			}
		}()
		fmt.Fprintf(cmd.ErrOrStderr(), "Metrics on http://localhost%s/metrics\n", metricsAddr)
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// serveMetrics serves handler at /metrics until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
