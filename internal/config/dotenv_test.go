package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("HAND_SIZE", "7")
	t.Setenv("ROUND_LIMIT", "3")
	t.Setenv("TURN_SECONDS", "-5")
	t.Setenv("CARD_PACKS", " CAH Base Set, ,Geek Pack ")
	t.Setenv("LOG_LEVEL", " DEBUG ")

	cfg := Load()
	assert.Equal(t, 7, cfg.HandSize)
	assert.Equal(t, 3, cfg.RoundLimit)
	assert.Equal(t, 120, cfg.TurnTimeLimitSeconds, "non-positive values keep the default")
	assert.Equal(t, []string{"CAH Base Set", "Geek Pack"}, cfg.CardPacks)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.MinPlayers)
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CZAR_TEST_A=file\nCZAR_TEST_B=file\n"), 0o600))
	t.Setenv("CZAR_TEST_A", "env")
	t.Cleanup(func() { os.Unsetenv("CZAR_TEST_B") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "env", os.Getenv("CZAR_TEST_A"))
	assert.Equal(t, "file", os.Getenv("CZAR_TEST_B"))
}

func TestNewLoggerLevels(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	assert.Equal(t, "debug", cfg.NewLogger().GetLevel().String())
	cfg.LogLevel = "loud"
	assert.Equal(t, "info", cfg.NewLogger().GetLevel().String())
}
