// Package rooms exposes room membership and settings to the game engine.
package rooms

import (
	"context"
	"crypto/rand"
	"errors"
)

var ErrRoomNotFound = errors.New("room not found")

// Settings are the per-room values a game is configured from.
type Settings struct {
	RoomID               string
	MaxPlayers           int
	RoundLimit           int
	TurnTimeLimitSeconds int
}

// Directory is the read-only view of rooms the engine needs.
type Directory interface {
	ActiveMembers(ctx context.Context, roomID string) ([]string, error)
	Settings(ctx context.Context, roomID string) (Settings, error)
}

// NewCode returns a six character room code.
func NewCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
