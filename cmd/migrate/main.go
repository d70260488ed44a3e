package main

import (
	"errors"
	"flag"
	"os"

	"card-czar/internal/config"

	"github.com/charmbracelet/log"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	dir := flag.String("dir", "db/migrations", "migrations directory")
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn("failed to load .env", "error", err)
	}
	logger := config.Load().NewLogger().WithPrefix("migrate")

	m, err := migrate.New("file://"+*dir, mustDatabaseURL(logger))
	if err != nil {
		logger.Fatal("migration setup failed", "error", err)
	}
	defer m.Close()

	if *down {
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("rollback failed", "error", err)
		}
	} else if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("database migration failed", "error", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Fatal("read schema version", "error", err)
	}
	logger.Info("database migrations applied", "version", version, "dirty", dirty)
}

func mustDatabaseURL(logger *log.Logger) string {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL is not set")
	}
	return dsn
}
