package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hmans/tweetgraph/internal/graph"
	"github.com/hmans/tweetgraph/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the GraphQL server",
	Long: `Start an HTTP server that serves the GraphQL API.

The server exposes:
  - GraphQL endpoint at / and /graphql (POST, or GET with a query parameter)
  - Schema explorer at / and /graphql (GET without a query)
  - Prometheus metrics at /metrics
  - Health check at /healthz

Examples:
  # Start server on the configured port (default 4000)
  tweetgraph serve

  # Start server on a custom port against a local badger store
  tweetgraph serve --port 3000 --store badger`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	schema, err := graph.NewSchema(newResolver())
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg.Addr(), graph.NewHandler(schema, logger), prom, logger)

	// Set up signal handling with context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Server ready at http://localhost:%d/\n", cfg.Server.Port)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	fmt.Println("Server stopped")
	return nil
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 4000, "Port to listen on (overrides the config file)")
	rootCmd.AddCommand(serveCmd)
}
