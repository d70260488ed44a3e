package game

import (
	"fmt"
	"sort"
	"sync"
)

type gameEntry struct {
	mu   sync.Mutex
	game *Game

	// Writes that follow an update run in commit order. Tickets are issued
	// under mu; served is guarded by writes.
	writes sync.Mutex
	turn   *sync.Cond
	issued uint64
	served uint64
}

func newGameEntry(game *Game) *gameEntry {
	entry := &gameEntry{game: game}
	entry.turn = sync.NewCond(&entry.writes)
	return entry
}

// write runs after once every earlier ticket has been written.
func (e *gameEntry) write(ticket uint64, snapshot Game, after func(Game)) {
	e.writes.Lock()
	for e.served != ticket {
		e.turn.Wait()
	}
	e.writes.Unlock()
	defer func() {
		e.writes.Lock()
		e.served++
		e.turn.Broadcast()
		e.writes.Unlock()
	}()
	after(snapshot)
}

// Store keeps live games in memory. Each game has its own lock; the store
// lock only guards the indexes and is never held while a game lock is taken.
type Store struct {
	mu     sync.Mutex
	games  map[string]*gameEntry
	rounds map[string]string
	rooms  map[string]string
}

func NewStore() *Store {
	return &Store{
		games:  make(map[string]*gameEntry),
		rounds: make(map[string]string),
		rooms:  make(map[string]string),
	}
}

// AddGame registers game as the room's current game. The room's previous
// game, if any, is dropped unless replace rejects it.
func (s *Store) AddGame(game *Game, replace func(previous Game) error) error {
	return s.AddGameThen(game, replace, nil)
}

// AddGameThen is AddGame followed by after, which receives a snapshot of the
// new game and is written before any later update of it. If the room changed
// games while replace was deciding, nothing is added and
// ErrConcurrencyConflict is returned.
func (s *Store) AddGameThen(game *Game, replace func(previous Game) error, after func(Game)) error {
	s.mu.Lock()
	previousID, hasPrevious := s.rooms[game.RoomID]
	previous := s.games[previousID]
	s.mu.Unlock()

	if previous != nil && replace != nil {
		previous.mu.Lock()
		snapshot := previous.game.clone()
		previous.mu.Unlock()
		if err := replace(snapshot); err != nil {
			return err
		}
	}

	entry := newGameEntry(game)
	var snapshot Game
	if after != nil {
		snapshot = game.clone()
		entry.issued = 1
	}

	s.mu.Lock()
	currentID, hasCurrent := s.rooms[game.RoomID]
	if hasCurrent != hasPrevious || currentID != previousID {
		s.mu.Unlock()
		return fmt.Errorf("%w: room %s changed games", ErrConcurrencyConflict, game.RoomID)
	}
	if hasPrevious {
		s.dropLocked(previousID)
	}
	s.games[game.ID] = entry
	s.rooms[game.RoomID] = game.ID
	s.mu.Unlock()

	if after != nil {
		entry.write(0, snapshot, after)
	}
	return nil
}

func (s *Store) dropLocked(gameID string) {
	entry, ok := s.games[gameID]
	if !ok {
		return
	}
	delete(s.games, gameID)
	for roundID, owner := range s.rounds {
		if owner == gameID {
			delete(s.rounds, roundID)
		}
	}
	if s.rooms[entry.game.RoomID] == gameID {
		delete(s.rooms, entry.game.RoomID)
	}
}

func (s *Store) entry(gameID string) (*gameEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.games[gameID]
	return entry, ok
}

func (s *Store) indexRound(roundID, gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[roundID] = gameID
}

// GameForRound resolves the game owning a round.
func (s *Store) GameForRound(roundID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gameID, ok := s.rounds[roundID]
	return gameID, ok
}

// GameForRoom returns the room's current game.
func (s *Store) GameForRoom(roomID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gameID, ok := s.rooms[roomID]
	return gameID, ok
}

// GetGame returns a snapshot of the game.
func (s *Store) GetGame(id string) (Game, bool) {
	entry, ok := s.entry(id)
	if !ok {
		return Game{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.game.clone(), true
}

// UpdateGame runs update with the game locked and returns a snapshot taken
// before the lock is released. A failing update must leave the game as it
// found it.
func (s *Store) UpdateGame(id string, update func(game *Game) error) (Game, error) {
	return s.UpdateGameThen(id, update, nil)
}

// UpdateGameThen is UpdateGame followed by after, which runs on the snapshot
// once the game lock is released. The after calls of one game run one at a
// time, in the order their updates committed. after must not update the
// same game.
func (s *Store) UpdateGameThen(id string, update func(game *Game) error, after func(Game)) (Game, error) {
	entry, ok := s.entry(id)
	if !ok {
		return Game{}, ErrGameNotFound
	}
	entry.mu.Lock()
	if err := update(entry.game); err != nil {
		entry.mu.Unlock()
		return Game{}, err
	}
	snapshot := entry.game.clone()
	if after == nil {
		entry.mu.Unlock()
		return snapshot, nil
	}
	ticket := entry.issued
	entry.issued++
	entry.mu.Unlock()

	entry.write(ticket, snapshot, after)
	return snapshot, nil
}

// GameIDs lists live games in creation order.
func (s *Store) GameIDs() []string {
	s.mu.Lock()
	entries := make([]*gameEntry, 0, len(s.games))
	for _, entry := range s.games {
		entries = append(entries, entry)
	}
	s.mu.Unlock()

	type keyed struct {
		id      string
		created int64
	}
	list := make([]keyed, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		list = append(list, keyed{id: entry.game.ID, created: entry.game.CreatedAt.UnixNano()})
		entry.mu.Unlock()
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].created == list[j].created {
			return list[i].id < list[j].id
		}
		return list[i].created < list[j].created
	})
	ids := make([]string, len(list))
	for i, item := range list {
		ids[i] = item.id
	}
	return ids
}
