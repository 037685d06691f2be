package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rpattn/testplan/internal/api"
	"github.com/rpattn/testplan/internal/ingestion"
	"github.com/rpattn/testplan/internal/middleware"
)

func newServeCmd() *cobra.Command {
	var (
		inMemory  bool
		noMigrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			b, err := openBackend(ctx, inMemory, !noMigrate)
			if err != nil {
				return err
			}
			defer b.close()

			router := api.NewRouter(api.Deps{
				Service:   b.service,
				Ingestion: ingestion.NewService(b.service, logger),
				TestCases: b.testCases,
				Logger:    logger,
			})

			corsHandler := cors.New(cors.Options{
				AllowedOrigins:   cfg.Server.AllowedOrigins,
				AllowCredentials: true,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
				AllowedHeaders:   []string{"Content-Type", middleware.WorkspaceHeader},
			})

			server := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      corsHandler.Handler(router),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("starting HTTP server", zap.String("addr", cfg.Server.Addr), zap.Bool("memory", inMemory))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
				close(serverErr)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-serverErr:
				return err
			case <-quit:
			}
			logger.Info("shutting down server")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}

			logger.Info("server exited")
			return nil
		},
	}
	cmd.Flags().BoolVar(&inMemory, "memory", false, "Use an in-memory store instead of PostgreSQL")
	cmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "Skip applying migrations on startup")
	return cmd
}
