package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jbeeko/contacts-worker/internal/config"
	"github.com/jbeeko/contacts-worker/internal/handler"
	"github.com/jbeeko/contacts-worker/internal/logger"
	"github.com/jbeeko/contacts-worker/internal/repository"
	"github.com/jbeeko/contacts-worker/internal/router"
	"github.com/jbeeko/contacts-worker/internal/server"
	"github.com/jbeeko/contacts-worker/internal/service"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		loggerService := logger.NewLoggerService(cfg.Observability)
		defer loggerService.Shutdown()

		log := logger.NewLoggerWithService(cfg.Observability, loggerService)

		srv, err := server.New(cfg, &log, loggerService)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize server")
			return err
		}

		repos := repository.NewRepositories(srv)
		services, err := service.NewService(srv, repos)
		if err != nil {
			return err
		}

		handlers := handler.NewHandlers(srv, services)
		srv.SetupHTTPServer(router.NewRouter(srv, handlers))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case err := <-serveErr:
			if err != nil {
				log.Error().Err(err).Msg("server stopped")
				return err
			}
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
			return err
		}

		log.Info().Msg("server exited properly")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
