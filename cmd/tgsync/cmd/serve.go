package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"tgsync/internal/app/server/api"
	"tgsync/internal/infrastructure/storage"
)

const shutdownTimeout = 10 * time.Second

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API синхронизации",
	Long: `Поднимает HTTP API: POST /api/v1/sync принимает батч записей и сверяет его
со всеми хранилищами, GET /api/v1/status и /api/v1/health отдают состояние.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		adapters, err := openProviders(ctx, "")
		if err != nil {
			return err
		}
		defer storage.CloseAll(adapters)

		providers := make([]api.Provider, 0, len(adapters))
		for _, a := range adapters {
			providers = append(providers, a)
		}

		addr := cfg.Server.Address
		if serveAddress != "" {
			addr = serveAddress
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.New(newSyncService(adapters), providers, log),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting server", "address", addr, "providers", len(adapters))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "адрес HTTP сервера (по умолчанию server.address)")
}
