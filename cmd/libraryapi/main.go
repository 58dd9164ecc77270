package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardcat/library-lending-go/config"
	"github.com/cardcat/library-lending-go/httpapi"
	"github.com/cardcat/library-lending-go/ledger/postgresengine"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
	requestTimeout  = 10 * time.Second

	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("service exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	config.LoadEnv()

	pool, poolErr := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig())
	if poolErr != nil {
		return poolErr
	}
	defer pool.Close()

	store, storeErr := postgresengine.NewLedgerStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
	if storeErr != nil {
		return storeErr
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStartup()

	if schemaErr := store.CreateSchema(startupCtx); schemaErr != nil {
		return schemaErr
	}

	cardIDs, cardsErr := config.SeedCardIDs()
	if cardsErr != nil {
		return cardsErr
	}

	if seedErr := store.SeedCards(startupCtx, cardIDs); seedErr != nil {
		return seedErr
	}

	router := httpapi.NewRouter(store, logger, requestTimeout)

	server := &http.Server{
		Addr:              config.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("listening", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case serveErr := <-serverErrors:
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}

	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			closeErr := server.Close()

			return errors.Join(shutdownErr, closeErr)
		}
	}

	return nil
}
