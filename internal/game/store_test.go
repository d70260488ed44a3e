package game

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGameReplacesRoomGame(t *testing.T) {
	store := NewStore()
	first := &Game{ID: "g1", RoomID: "room", Status: StatusEnded}
	require.NoError(t, store.AddGame(first, func(Game) error { return nil }))
	store.indexRound("r1", "g1")

	second := &Game{ID: "g2", RoomID: "room", Status: StatusWaiting}
	var replaced string
	require.NoError(t, store.AddGame(second, func(previous Game) error {
		replaced = previous.ID
		return nil
	}))
	assert.Equal(t, "g1", replaced)

	_, ok := store.GetGame("g1")
	assert.False(t, ok)
	_, ok = store.GameForRound("r1")
	assert.False(t, ok)
	gameID, ok := store.GameForRoom("room")
	require.True(t, ok)
	assert.Equal(t, "g2", gameID)

	refused := errors.New("still playing")
	err := store.AddGame(&Game{ID: "g3", RoomID: "room"}, func(Game) error { return refused })
	require.ErrorIs(t, err, refused)
	gameID, _ = store.GameForRoom("room")
	assert.Equal(t, "g2", gameID)
}

func TestUpdateGameReturnsSnapshot(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.AddGame(&Game{
		ID:      "g1",
		RoomID:  "room",
		Players: []Player{{ID: "alice", Hand: []CardHandle{{ID: "c1", Text: "one"}}}},
		Dealt:   map[string]struct{}{"one": {}},
	}, nil))

	snapshot, err := store.UpdateGame("g1", func(game *Game) error {
		game.Players[0].Score = 2
		return nil
	})
	require.NoError(t, err)
	snapshot.Players[0].Hand[0].Text = "changed"
	snapshot.Dealt["changed"] = struct{}{}

	current, ok := store.GetGame("g1")
	require.True(t, ok)
	assert.Equal(t, 2, current.Players[0].Score)
	assert.Equal(t, "one", current.Players[0].Hand[0].Text)
	assert.NotContains(t, current.Dealt, "changed")

	_, err = store.UpdateGame("missing", func(*Game) error { return nil })
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestGameIDsInCreationOrder(t *testing.T) {
	store := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AddGame(&Game{ID: "late", RoomID: "r1", CreatedAt: base.Add(time.Minute)}, nil))
	require.NoError(t, store.AddGame(&Game{ID: "early", RoomID: "r2", CreatedAt: base}, nil))
	assert.Equal(t, []string{"early", "late"}, store.GameIDs())
}

func TestConcurrentAddGameKeepsOneGamePerRoom(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := store.AddGame(&Game{ID: id, RoomID: "room"}, func(Game) error { return nil })
			if err != nil {
				assert.ErrorIs(t, err, ErrConcurrencyConflict)
			}
		}(fmt.Sprintf("g%d", i))
	}
	wg.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	var live []string
	for id, entry := range store.games {
		if entry.game.RoomID == "room" {
			live = append(live, id)
		}
	}
	require.Len(t, live, 1)
	assert.Equal(t, live[0], store.rooms["room"])
}

func TestAddGameRefusesWhenRoomChangedDuringReplace(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.AddGame(&Game{ID: "g1", RoomID: "room", Status: StatusEnded}, nil))

	err := store.AddGame(&Game{ID: "g2", RoomID: "room"}, func(Game) error {
		require.NoError(t, store.AddGame(&Game{ID: "g3", RoomID: "room"}, func(Game) error { return nil }))
		return nil
	})
	require.ErrorIs(t, err, ErrConcurrencyConflict)
	gameID, ok := store.GameForRoom("room")
	require.True(t, ok)
	assert.Equal(t, "g3", gameID)
	_, ok = store.GetGame("g2")
	assert.False(t, ok)
}

func TestWritesFollowCommitOrder(t *testing.T) {
	store := NewStore()
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(Game) {
		return func(Game) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}
	require.NoError(t, store.AddGameThen(&Game{ID: "g1", RoomID: "room"}, nil, record("created")))

	writing := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, err := store.UpdateGameThen("g1", func(game *Game) error {
			game.CurrentRoundNumber = 1
			return nil
		}, func(game Game) {
			close(writing)
			<-release
			record("first")(game)
		})
		assert.NoError(t, err)
	}()
	<-writing

	second := make(chan struct{})
	go func() {
		defer close(second)
		_, err := store.UpdateGameThen("g1", func(game *Game) error {
			game.CurrentRoundNumber = 2
			return nil
		}, record("second"))
		assert.NoError(t, err)
	}()

	// The second update commits without waiting, but its write does.
	require.Eventually(t, func() bool {
		game, _ := store.GetGame("g1")
		return game.CurrentRoundNumber == 2
	}, time.Second, time.Millisecond)
	require.Never(t, func() bool {
		select {
		case <-second:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(release)
	<-second
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"created", "first", "second"}, order)
}
