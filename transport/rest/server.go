package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type uGame interface {
	ActiveRooms() int
	RecentMatches(ctx context.Context, limit int) ([]*entity.MatchRecord, error)
}

type Server struct {
	logger *slog.Logger
	uGame  uGame

	matchLimit int
}

func New(logger *slog.Logger, uGame uGame, matchLimit int) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		uGame:  uGame,

		matchLimit: matchLimit,
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.PingHandler)
	mux.HandleFunc("GET /rooms", that.RoomsHandler)
	mux.HandleFunc("GET /matches", that.MatchesHandler)

	return mux
}

// Start - starts the HTTP server and blocks until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start")

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown server", "error", err)
		}
	}()

	log.Info("http server started", "port", port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
