package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kiesman99/mosaic/internal/server"
	"github.com/kiesman99/mosaic/internal/stitcher"
)

// version is reported by the health endpoint.
const version = "1.0.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the mosaic API",
	Long: `Start an HTTP server that provides a REST API for mosaic stitching and
tile lookups.

Examples:
  # Start server on default port 8080 serving tiles from ./tiles
  mosaic serve --dataset-dir ./tiles

  # Start server on custom port with an in-memory tile cache
  mosaic serve --port 3000 --dataset-cache-size 64

  # Start server with custom bind address and JSON logs
  mosaic serve --bind 0.0.0.0 --port 8080 --log-format json`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("timeout", 30*time.Second, "request timeout")
	serveCmd.Flags().Int64("max-pixels", stitcher.DefaultMaxPixels, "largest mosaic in pixels the server will produce")

	// Bind flags to viper
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("server.max_pixels", serveCmd.Flags().Lookup("max-pixels"))
}

func runServe(cmd *cobra.Command, args []string) error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	timeout := viper.GetDuration("server.timeout")

	addr := fmt.Sprintf("%s:%d", bind, port)

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := newStitcher(logger, viper.GetInt64("server.max_pixels"))
	if err != nil {
		return err
	}

	apiServer := server.NewServer(version, st, timeout, logger)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(apiServer, timeout, logger),
		ReadTimeout:  timeout,
		WriteTimeout: timeout + 5*time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("Starting mosaic server",
		zap.String("addr", addr),
		zap.String("health", fmt.Sprintf("http://%s/api/v1/health", addr)),
		zap.String("mosaic", fmt.Sprintf("http://%s/api/v1/mosaic", addr)),
		zap.String("metrics", fmt.Sprintf("http://%s/metrics", addr)))

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
