package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"card-czar/internal/cards"
	"card-czar/internal/config"
	"card-czar/internal/rooms"
	"card-czar/internal/stats"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Engine runs card games. All mutations of a game happen under that game's
// lock; persistence and stats are written after the lock is released and
// their failures are only logged.
type Engine struct {
	store  *Store
	db     *gorm.DB
	cards  cards.Source
	stats  stats.Recorder
	clock  quartz.Clock
	logger *log.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	handSize     int
	minPlayers   int
	maxPlayers   int
	dealAttempts int
	roundLimit   int
	turnSeconds  int
}

type Option func(*Engine)

func WithStats(recorder stats.Recorder) Option {
	return func(e *Engine) { e.stats = recorder }
}

func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRand fixes the random source used for judge selection and timed-out
// judging, for reproducible games.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// New builds an engine. conn may be nil, in which case nothing is persisted.
func New(conn *gorm.DB, cfg config.Config, source cards.Source, opts ...Option) *Engine {
	e := &Engine{
		store:        NewStore(),
		db:           conn,
		cards:        source,
		clock:        quartz.NewReal(),
		logger:       log.Default(),
		handSize:     cfg.HandSize,
		minPlayers:   cfg.MinPlayers,
		maxPlayers:   cfg.MaxPlayers,
		dealAttempts: cfg.DealAttempts,
		roundLimit:   cfg.RoundLimit,
		turnSeconds:  cfg.TurnTimeLimitSeconds,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.handSize <= 0 {
		e.handSize = 10
	}
	if e.minPlayers < 2 {
		e.minPlayers = 2
	}
	if e.dealAttempts <= 0 {
		e.dealAttempts = 5
	}
	e.logger = e.logger.WithPrefix("engine")
	return e
}

func (e *Engine) intn(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.IntN(n)
}

// CreateGame opens a waiting game for room with one player per member, in
// member order. The room's previous game is replaced unless it is still
// being played.
func (e *Engine) CreateGame(ctx context.Context, room Room, members []string) (Game, error) {
	unique := make([]string, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, member := range members {
		if member == "" {
			continue
		}
		if _, dup := seen[member]; dup {
			continue
		}
		seen[member] = struct{}{}
		unique = append(unique, member)
	}
	if len(unique) < e.minPlayers {
		return Game{}, fmt.Errorf("%w: need %d, have %d", ErrInsufficientPlayers, e.minPlayers, len(unique))
	}
	if room.RoundLimit <= 0 {
		room.RoundLimit = e.roundLimit
	}
	if room.TurnTimeLimitSeconds <= 0 {
		room.TurnTimeLimitSeconds = e.turnSeconds
	}

	game := &Game{
		ID:                   uuid.NewString(),
		RoomID:               room.ID,
		Status:               StatusWaiting,
		RoundLimit:           room.RoundLimit,
		TurnTimeLimitSeconds: room.TurnTimeLimitSeconds,
		Dealt:                make(map[string]struct{}),
		UsedBlackCards:       make(map[string]struct{}),
		CreatedAt:            e.clock.Now().UTC(),
	}
	for i, member := range unique {
		game.Players = append(game.Players, Player{
			ID:        member,
			TurnOrder: i + 1,
			Active:    true,
		})
	}
	snapshot := game.clone()
	err := e.store.AddGameThen(game, func(previous Game) error {
		if previous.Status == StatusActive {
			return fmt.Errorf("%w: room %s already has an active game", ErrInvalidTransition, room.ID)
		}
		return nil
	}, func(created Game) {
		e.persistGame(ctx, created)
	})
	if err != nil {
		return Game{}, err
	}
	e.logger.Info("game created", "game_id", snapshot.ID, "room_id", room.ID, "players", len(snapshot.Players))
	return snapshot, nil
}

// CreateGameForRoom reads the room's settings and active members from dir
// and creates a game from them. Members past the room's player cap, or the
// engine's when the room has none, are left out.
func (e *Engine) CreateGameForRoom(ctx context.Context, dir rooms.Directory, roomID string) (Game, error) {
	settings, err := dir.Settings(ctx, roomID)
	if err != nil {
		return Game{}, err
	}
	members, err := dir.ActiveMembers(ctx, roomID)
	if err != nil {
		return Game{}, err
	}
	limit := settings.MaxPlayers
	if limit <= 0 {
		limit = e.maxPlayers
	}
	if limit > 0 && len(members) > limit {
		members = members[:limit]
	}
	return e.CreateGame(ctx, Room{
		ID:                   roomID,
		RoundLimit:           settings.RoundLimit,
		TurnTimeLimitSeconds: settings.TurnTimeLimitSeconds,
	}, members)
}

// StartGame activates the game, opens the first round and deals every player
// a full hand. Short deals are logged and play continues. If no prompt can be
// drawn the game stays waiting and nothing is dealt.
func (e *Engine) StartGame(ctx context.Context, gameID string) (Round, error) {
	var (
		round Round
		dealt = make(map[string][]CardHandle)
	)
	_, err := e.store.UpdateGameThen(gameID, func(game *Game) error {
		if game.Status != StatusWaiting {
			return fmt.Errorf("%w: game is %s", ErrInvalidTransition, game.Status)
		}
		game.Status = StatusActive
		created, err := e.openRound(ctx, game)
		if err != nil {
			game.Status = StatusWaiting
			return err
		}
		game.StartedAt = created.StartedAt
		for _, player := range game.activePlayers() {
			hand, err := e.fill(ctx, game, player, e.handSize)
			if err != nil {
				e.warnShortDeal(game.ID, player.ID, err)
			}
			dealt[player.ID] = hand
		}
		round = created.clone()
		return nil
	}, func(committed Game) {
		e.persistStart(ctx, committed, dealt)
		e.persistRound(ctx, committed, round)
	})
	if err != nil {
		return Round{}, err
	}
	e.logger.Info("game started", "game_id", gameID, "judge", round.JudgeID, "black_card", round.BlackCard.Text)
	return round, nil
}

// EndGameEarly stops an active game now and resolves the winner from the
// current scores. An unfinished round is left as it is.
func (e *Engine) EndGameEarly(ctx context.Context, gameID string) (Game, error) {
	return e.store.UpdateGameThen(gameID, func(game *Game) error {
		if game.Status != StatusActive {
			return fmt.Errorf("%w: game is %s", ErrInvalidTransition, game.Status)
		}
		e.finish(game)
		return nil
	}, func(committed Game) {
		e.afterGameEnd(ctx, committed, "ended_early")
	})
}

// RemovePlayer takes a player out of the game. Their hand is discarded but
// its texts stay in the ledger. A round waiting only on that player moves to
// judging, and the game ends when fewer than two players remain.
func (e *Engine) RemovePlayer(ctx context.Context, gameID, playerID string) (Game, error) {
	var (
		judging bool
		ended   bool
	)
	return e.store.UpdateGameThen(gameID, func(game *Game) error {
		if game.Status == StatusEnded {
			return fmt.Errorf("%w: game is %s", ErrInvalidTransition, game.Status)
		}
		player := game.player(playerID)
		if player == nil {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		if !player.Active {
			return nil
		}
		player.Active = false
		player.Hand = nil
		if game.Status != StatusActive {
			return nil
		}
		if len(game.activePlayers()) < 2 {
			e.finish(game)
			ended = true
			return nil
		}
		if round := game.currentRound(); round != nil && round.Status == RoundCardSelection && allSubmitted(game, round) {
			e.setRoundStatus(round, RoundJudging)
			judging = true
		}
		return nil
	}, func(committed Game) {
		e.persistPlayerRemoved(ctx, committed, playerID)
		if judging {
			e.persistRoundStatus(ctx, committed, *committed.currentRound(), RoundJudging)
		}
		if ended {
			e.afterGameEnd(ctx, committed, "players_left")
		}
	})
}

// finish resolves the winner and ends the game. Must run with the game locked.
func (e *Engine) finish(game *Game) {
	active := game.activePlayers()
	players := make([]Player, 0, len(active))
	for _, player := range active {
		players = append(players, *player)
	}
	result := Resolve(players)
	game.WinnerID = result.WinnerID
	game.Tie = result.Tie
	game.Status = StatusEnded
	game.EndedAt = e.clock.Now().UTC()
}

func (e *Engine) afterGameEnd(ctx context.Context, game Game, reason string) {
	e.persistGameEnd(ctx, game, reason)
	e.logger.Info("game ended", "game_id", game.ID, "reason", reason, "winner", game.WinnerID, "tie", game.Tie)
	if e.stats == nil {
		return
	}
	scores := make([]stats.FinalScore, 0, len(game.Players))
	for _, player := range game.Players {
		scores = append(scores, stats.FinalScore{PlayerID: player.ID, Score: player.Score})
	}
	var winner *string
	if game.HasSingleWinner() {
		id := game.WinnerID
		winner = &id
	}
	if err := e.stats.RecordGameEnd(ctx, game.ID, scores, winner); err != nil {
		e.logger.Warn("record game end failed", "game_id", game.ID, "error", err)
	}
}

func (e *Engine) warnShortDeal(gameID, playerID string, err error) {
	if errors.Is(err, ErrInsufficientCards) {
		e.logger.Warn("short deal", "game_id", gameID, "player_id", playerID, "error", err)
		return
	}
	e.logger.Error("deal failed", "game_id", gameID, "player_id", playerID, "error", err)
}

// Game returns a snapshot of the game.
func (e *Engine) Game(gameID string) (Game, error) {
	game, ok := e.store.GetGame(gameID)
	if !ok {
		return Game{}, ErrGameNotFound
	}
	return game, nil
}

// GameForRoom returns the room's current game.
func (e *Engine) GameForRoom(roomID string) (Game, error) {
	gameID, ok := e.store.GameForRoom(roomID)
	if !ok {
		return Game{}, ErrGameNotFound
	}
	return e.Game(gameID)
}

// Round returns a snapshot of the round.
func (e *Engine) Round(roundID string) (Round, error) {
	gameID, ok := e.store.GameForRound(roundID)
	if !ok {
		return Round{}, ErrRoundNotFound
	}
	game, ok := e.store.GetGame(gameID)
	if !ok {
		return Round{}, ErrRoundNotFound
	}
	round := game.round(roundID)
	if round == nil {
		return Round{}, ErrRoundNotFound
	}
	return *round, nil
}

// CurrentRound returns the game's latest round.
func (e *Engine) CurrentRound(gameID string) (Round, error) {
	game, err := e.Game(gameID)
	if err != nil {
		return Round{}, err
	}
	round := game.currentRound()
	if round == nil {
		return Round{}, ErrRoundNotFound
	}
	return *round, nil
}

// Hand returns a copy of the player's hand.
func (e *Engine) Hand(gameID, playerID string) ([]CardHandle, error) {
	game, err := e.Game(gameID)
	if err != nil {
		return nil, err
	}
	player := game.player(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return player.Hand, nil
}

// ActiveRounds lists the unfinished round of every active game.
func (e *Engine) ActiveRounds() []Round {
	var out []Round
	for _, id := range e.store.GameIDs() {
		game, ok := e.store.GetGame(id)
		if !ok || game.Status != StatusActive {
			continue
		}
		if round := game.currentRound(); round != nil && round.Status != RoundCompleted {
			out = append(out, *round)
		}
	}
	return out
}
