package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWritesPair(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	up, down, err := create(dir, "add_rooms", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20250304050607_add_rooms.up.sql"), up)
	assert.Equal(t, filepath.Join(dir, "20250304050607_add_rooms.down.sql"), down)
	body, err := os.ReadFile(up)
	require.NoError(t, err)
	assert.Equal(t, "-- up migration\n", string(body))

	_, _, err = create(dir, "add_rooms", now)
	require.Error(t, err)
}
