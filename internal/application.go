package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/blockclaim/blockclaim-backend/internal/broadcast"
	"github.com/blockclaim/blockclaim-backend/internal/config"
	"github.com/blockclaim/blockclaim-backend/internal/grid"
	"github.com/blockclaim/blockclaim-backend/internal/registry"
	"github.com/blockclaim/blockclaim-backend/internal/repository"
	"github.com/blockclaim/blockclaim-backend/internal/repository/storage"
	"github.com/blockclaim/blockclaim-backend/internal/usecase"
	"github.com/blockclaim/blockclaim-backend/transport/rest"
	"github.com/blockclaim/blockclaim-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	store := grid.NewStore(conf.GridSize)
	userRegistry := registry.New()
	hub := broadcast.NewHub(logger)

	var blockRepo repository.BlockRepository

	if addr := conf.Redis.GetRedisAddr(); addr != "" {
		redisClient, err := storage.NewRedisStorage(ctx, addr)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		blockRepo = repository.NewBlockRepository(redisClient)

		restored, err := restoreBlocks(ctx, blockRepo, store)
		if err != nil {
			return fmt.Errorf("could not restore blocks: %w", err)
		}

		log.Info("Restored claimed blocks from storage", "count", restored)
	} else {
		log.Info("Redis not configured, running memory-only")
	}

	gridManager := usecase.NewGridManager(logger, store, userRegistry, hub, blockRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(conf.HTTPPort, rest.NewHandlers(gridManager)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gridManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// restoreBlocks reloads persisted claim records into the grid store;
// records that no longer fit the grid are skipped.
func restoreBlocks(ctx context.Context, repo repository.BlockRepository, store *grid.Store) (int, error) {
	blocks, err := repo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load blocks: %w", err)
	}

	var restored int
	for _, block := range blocks {
		if store.Restore(block) {
			restored++
		}
	}

	return restored, nil
}
