package rooms

import (
	"context"
	"strings"
	"testing"
	"time"

	"card-czar/internal/db/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeAlphabet(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for i := 0; i < 50; i++ {
		code := NewCode()
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q in %s", r, code)
		}
	}
}

func TestStaticDirectory(t *testing.T) {
	dir := NewStatic()
	dir.Put(Settings{RoomID: "room-1", RoundLimit: 3, TurnTimeLimitSeconds: 30}, "ada", "ben")

	members, err := dir.ActiveMembers(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ada", "ben"}, members)

	members[0] = "mutated"
	again, _ := dir.ActiveMembers(context.Background(), "room-1")
	assert.Equal(t, "ada", again[0])

	_, err = dir.Settings(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStoreRoomLifecycle(t *testing.T) {
	conn := dbtest.Open(t)
	store := NewStore(conn)
	ctx := context.Background()

	room, err := store.Create(ctx, "Friday night", "ada", Settings{MaxPlayers: 6, RoundLimit: 5, TurnTimeLimitSeconds: 45})
	require.NoError(t, err)
	require.Len(t, room.Code, 6)

	require.NoError(t, store.Join(ctx, room.ID, "ben"))
	require.NoError(t, store.Join(ctx, room.ID, "cat"))
	require.NoError(t, store.Leave(ctx, room.ID, "ben"))

	members, err := store.ActiveMembers(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ada", "cat"}, members)

	require.NoError(t, store.Join(ctx, room.ID, "ben"))
	members, err = store.ActiveMembers(ctx, room.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ada", "ben", "cat"}, members)

	settings, err := store.Settings(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, Settings{RoomID: room.ID, MaxPlayers: 6, RoundLimit: 5, TurnTimeLimitSeconds: 45}, settings)

	_, err = store.ActiveMembers(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, stale, err := store.Prune(ctx, time.Now().Add(time.Hour), 100, true)
	require.NoError(t, err)
	found := false
	for _, r := range stale {
		found = found || r.ID == room.ID
	}
	assert.True(t, found)

	deleted, _, err := store.Prune(ctx, time.Now().Add(time.Hour), 1, false)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, 1)
	_, err = store.Settings(ctx, room.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
