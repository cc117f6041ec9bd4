/*
main.go - HTTP server entry point

STARTUP SEQUENCE:
  1. Load .env and the YAML config
  2. Initialize logging (and tracing when enabled)
  3. Open the SQLite store
  4. Wire readiness and landed-cost services over the store and an event store
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (optional)
  -port    HTTP server port, overrides config
  -db      SQLite database path, overrides config
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  INPUTPLAN_DB, INPUTPLAN_PORT, LOG_LEVEL, LOG_FORMAT

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM the server stops accepting connections, waits up to 30s
  for active requests, then flushes spans and closes the database.

SEE ALSO:
  - pkg/interfaces/api/server.go: Router configuration
  - pkg/infrastructure/repositories/sqlite/store.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/farmops/inputplan/pkg/application/services/landedcost"
	"github.com/farmops/inputplan/pkg/application/services/readiness"
	"github.com/farmops/inputplan/pkg/infrastructure/config"
	"github.com/farmops/inputplan/pkg/infrastructure/events"
	"github.com/farmops/inputplan/pkg/infrastructure/logger"
	"github.com/farmops/inputplan/pkg/infrastructure/repositories/sqlite"
	"github.com/farmops/inputplan/pkg/interfaces/api"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port, *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int, dbPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if err := logger.Init(logger.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		TracingEnabled: cfg.Log.Tracing,
	}); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = logger.Shutdown(ctx)
	}()

	ctx := context.Background()

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	eventStore := events.NewInMemoryEventStore()
	sub, err := eventStore.Subscribe([]string{events.ProductBlockingEvent}, events.HandlerFunc(
		func(ctx context.Context, e events.Event) error {
			logger.Warn(ctx, "product blocking", "stream", e.StreamID())
			return nil
		}))
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	readinessService := readiness.NewEventDrivenService(
		readiness.NewService(store, store, store, store,
			readiness.WithCommittedStatuses(cfg.CommittedStatuses()...)),
		eventStore,
	)
	landedCost := landedcost.NewService(cfg.WeightTable(), store, landedcost.WithEventStore(eventStore))

	handler := api.NewHandler(readinessService, landedCost, store)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "addr", server.Addr, "db", cfg.Database.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info(ctx, "server stopped")
	return nil
}
