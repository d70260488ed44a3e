package main

import (
	"flag"
	"path/filepath"
	"strings"

	"card-czar/internal/cards"
	"card-czar/internal/config"
	"card-czar/internal/db"

	"github.com/charmbracelet/log"
)

func main() {
	filePath := flag.String("file", "cards.json", "path to a card pack file (.json or .csv)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn("failed to load .env", "error", err)
	}
	cfg := config.Load()
	logger := cfg.NewLogger().WithPrefix("import-cards")

	packs, err := readPacks(*filePath)
	if err != nil {
		logger.Fatal("failed to read card packs", "file", *filePath, "error", err)
	}

	conn, err := db.Open(cfg)
	if err != nil {
		logger.Fatal("database connection failed", "error", err)
	}

	results, err := db.ImportPacks(conn, packs)
	for _, result := range results {
		logger.Info("pack imported", "pack", result.Pack, "black", result.BlackAdded, "white", result.WhiteAdded)
	}
	if err != nil {
		logger.Fatal("failed to import card packs", "error", err)
	}
	logger.Info("loaded card packs", "packs", len(results))
}

func readPacks(path string) ([]cards.Pack, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return cards.ReadPacksCSV(path)
	}
	return cards.ReadPacks(path)
}
