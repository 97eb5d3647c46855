package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/bargain/internal/cli"
	httpAdapter "github.com/aretw0/bargain/pkg/adapters/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Hosts negotiations behind a JSON API described by /openapi.yaml.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := newHost(cmd, v)
			if err != nil {
				return err
			}
			defer host.Close()
			return serve(cmd.Context(), host)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().Bool("metrics", true, "Expose Prometheus metrics at /metrics")
	bind(v, cmd.Flags().Lookup("port"), cli.KeyPort)
	bind(v, cmd.Flags().Lookup("metrics"), cli.KeyMetrics)
	return cmd
}

func serve(ctx context.Context, host *cli.Host) error {
	opts := []httpAdapter.Option{
		httpAdapter.WithBaseConfig(host.Config),
		httpAdapter.WithLogger(host.Logger),
	}
	if host.Registry != nil {
		opts = append(opts, httpAdapter.WithMetrics(host.Registry))
	}

	handler, err := httpAdapter.NewHandler(host.Sessions, opts...)
	if err != nil {
		return fmt.Errorf("error building HTTP handler: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", host.Settings.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		host.Logger.Info("Starting Bargain Server", "address", srv.Addr, "archive", host.Settings.ArchiveBackend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		host.Logger.Info("Shutdown signal received, stopping server")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			host.Logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		host.Logger.Info("Bargain Server stopped gracefully")
		return nil
	}
}
