package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/citizen-clips/auth"
	"github.com/danielhkuo/citizen-clips/bot"
	"github.com/danielhkuo/citizen-clips/cliparse"
	"github.com/danielhkuo/citizen-clips/contest"
	"github.com/danielhkuo/citizen-clips/db"
	"github.com/danielhkuo/citizen-clips/discord"
	"github.com/danielhkuo/citizen-clips/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect and create schema
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database setup failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	engine := contest.New(dbConn, nil)

	// Connect to Discord
	session, err := discord.New(cfg.BotToken)
	if err != nil {
		slog.Error("discord session setup failed", "error", err)
		os.Exit(1)
	}

	dispatcher := bot.NewDispatcher(cfg.MaxInFlight, bot.DefaultEventTimeout)
	session.Attach(bot.New(engine, session, nil), dispatcher)

	if err := session.Open(); err != nil {
		slog.Error("discord connection failed", "error", err)
		os.Exit(1)
	}

	go purgeSessions(ctx, auth.NewSessionStore(dbConn, nil))

	// Create server
	server := http.Server{
		Handler: router.NewRouter(dbConn, cfg, engine, session),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown failed", "error", err)
		}
	}()

	slog.Info("Listening", "port", cfg.Port, "invite", cfg.InviteURL())
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}

	// Stop taking events, then let in-flight ones finish
	if err := session.Close(); err != nil {
		slog.Error("discord close failed", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		slog.Error("event dispatcher shutdown failed", "error", err)
	}
}

func newLogger(cfg cliparse.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// purgeSessions drops expired dashboard sessions every hour.
func purgeSessions(ctx context.Context, store *auth.SessionStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				slog.Error("session purge failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions purged", "count", n)
			}
		}
	}
}
