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
	"github.com/DairyFarmers/dfi-chat/pkg/gateway"
	"github.com/DairyFarmers/dfi-chat/pkg/notify"
	"github.com/DairyFarmers/dfi-chat/pkg/presence"
	"github.com/DairyFarmers/dfi-chat/pkg/room"
	"github.com/DairyFarmers/dfi-chat/pkg/snowflake"
	"github.com/DairyFarmers/dfi-chat/pkg/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
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
	log.Info("connected to scylla", "hosts", cfg.ScyllaHosts)

	ids, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return err
	}

	users := directory.NewScyllaDirectory(scylla, log)
	messages := store.NewScyllaStore(scylla, users, ids, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := room.NewRegistry(log)
	var broker room.Broker = registry
	var tracker presence.Tracker = presence.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		broker = room.NewRedisBridge(ctx, registry, rdb, log)
		tracker = presence.NewRedisTracker(rdb, log)
		log.Info("room events bridged over redis", "addr", cfg.RedisAddr)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.KafkaBrokers != "" {
		kn := notify.NewKafkaNotifier(strings.Split(cfg.KafkaBrokers, ","), log)
		defer kn.Close()
		notifier = kn
		log.Info("notification bridge enabled", "brokers", cfg.KafkaBrokers)
	}

	gw := gateway.New(gateway.Config{
		Verifier:   auth.NewTokenService(cfg.JWTSecret, 24*time.Hour),
		Users:      users,
		Store:      messages,
		Broker:     broker,
		Notifier:   notifier,
		Tracker:    tracker,
		SendBuffer: cfg.SendBuffer,
		Log:        log,
	})

	mux := http.NewServeMux()
	mux.Handle("GET /ws/chat/{counterpart_id}", gw)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("gateway listening", "addr", srv.Addr)
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
