package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/DairyFarmers/dfi-chat/pkg/auth"
	"github.com/DairyFarmers/dfi-chat/pkg/db"
	"github.com/DairyFarmers/dfi-chat/pkg/directory"
	"github.com/DairyFarmers/dfi-chat/pkg/presence"
	"github.com/DairyFarmers/dfi-chat/pkg/snowflake"
	"github.com/DairyFarmers/dfi-chat/pkg/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	scylla, err := db.NewSession(strings.Split(cfg.ScyllaHosts, ","), cfg.ScyllaKeyspace)
	if err != nil {
		return fmt.Errorf("connect scylla: %w", err)
	}
	defer scylla.Close()

	ids, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return err
	}

	users := directory.NewScyllaDirectory(scylla, log)
	messages := store.NewScyllaStore(scylla, users, ids, log)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	var tracker presence.Tracker = presence.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		tracker = presence.NewRedisTracker(rdb, log)
	}

	accounts := NewAccountsHandler(users, tokens, log)

	mux := http.NewServeMux()
	mux.Handle("POST /register", CORSMiddleware(http.HandlerFunc(accounts.Register)))
	mux.Handle("POST /login", CORSMiddleware(http.HandlerFunc(accounts.Login)))

	protected := func(h http.Handler) http.Handler {
		return CORSMiddleware(AuthMiddleware(tokens, h))
	}
	mux.Handle("GET /chats/{counterpart_id}/history", protected(NewHistoryHandler(messages, log)))
	mux.Handle("GET /chats/{counterpart_id}/presence", protected(NewPresenceHandler(tracker, log)))
	mux.Handle("GET /chats/active_chats", protected(NewActiveChatsHandler(messages, log)))
	mux.Handle("GET /chats/search_users", protected(NewSearchUsersHandler(users, log)))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("api listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
