package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"card-czar/internal/config"
	"card-czar/internal/db"
	"card-czar/internal/rooms"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

var CLI struct {
	Days     int    `default:"14" help:"Delete active rooms created more than this many days ago"`
	DryRun   bool   `name:"dry-run" help:"List the rooms that would be deleted without deleting them"`
	Batch    int    `default:"100" help:"Rooms deleted per transaction"`
	LogLevel string `short:"l" name:"log-level" help:"Log level (overrides LOG_LEVEL)"`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Description("Delete rooms nobody has used for a while."))

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn("failed to load .env", "error", err)
	}
	cfg := config.Load()
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	logger := cfg.NewLogger().WithPrefix("prune-rooms")

	if CLI.Days <= 0 {
		logger.Error("--days must be positive", "days", CLI.Days)
		kctx.Exit(1)
	}

	conn, err := db.Open(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		kctx.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cutoff := time.Now().UTC().AddDate(0, 0, -CLI.Days)
	deleted, stale, err := rooms.NewStore(conn).Prune(ctx, cutoff, CLI.Batch, CLI.DryRun)
	if err != nil {
		logger.Error("prune failed", "deleted", deleted, "error", err)
		kctx.Exit(1)
	}

	if CLI.DryRun {
		for _, room := range stale {
			logger.Info("would delete room", "code", room.Code, "name", room.Name, "created_at", room.CreatedAt)
		}
		logger.Info("dry run complete", "rooms", len(stale), "cutoff", cutoff)
		return
	}
	logger.Info("rooms pruned", "deleted", deleted, "cutoff", cutoff)
}
