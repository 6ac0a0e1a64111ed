package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/gomoku-backend/internal/config"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gomoku-backend/internal/session"
	"github.com/rocketscienceinc/gomoku-backend/internal/usecase"
	"github.com/rocketscienceinc/gomoku-backend/transport/rest"
	"github.com/rocketscienceinc/gomoku-backend/transport/websocket"
)

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	matches, closeMatches, err := newMatchRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeMatches()

	hub := websocket.NewHub(logger, websocket.WithStartDelay(conf.StartDelay))

	registry := usecase.NewRegistry(
		session.WithRestartInProgress(conf.AllowRestartInProgress),
		session.WithNotifier(hub.Publish),
	)
	gameManager := usecase.NewGameManager(logger.With("component", "game"), registry, matches)

	restServer := rest.New(logger, gameManager, conf.MatchHistory.Limit)
	wsServer := websocket.New(logger, hub, gameManager)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if httpErr := restServer.Start(groupCtx, conf.HTTPPort); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}
		return nil
	})

	group.Go(func() error {
		if wsErr := wsServer.Start(groupCtx, conf.SocketPort); wsErr != nil {
			return fmt.Errorf("WebSocket server error: %w", wsErr)
		}
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newMatchRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.MatchRepository, func(), error) {
	if !conf.Redis.Enabled() {
		log.Info("keeping match history in memory")
		return repository.NewMemoryMatchRepository(conf.MatchHistory.TTL), func() {}, nil
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeStorage := func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}

	return repository.NewMatchRepository(redisStorage, conf.MatchHistory.TTL), closeStorage, nil
}
