package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"card-czar/internal/cards"
	"card-czar/internal/config"
	"card-czar/internal/db"
	"card-czar/internal/game"
	"card-czar/internal/rooms"
	"card-czar/internal/stats"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var CLI struct {
	Players     int           `short:"p" default:"4" help:"Number of bot players"`
	Rounds      int           `short:"r" default:"3" help:"Round limit"`
	TurnSeconds int           `name:"turn-seconds" default:"2" help:"Phase time limit in seconds"`
	IdleRate    float64       `name:"idle-rate" default:"0.2" help:"Chance that a bot sits out a turn and lets the timer act"`
	Seed        uint64        `default:"0" help:"Random seed (0 picks one)"`
	Offline     bool          `help:"Do not touch the database even when DATABASE_URL is set"`
	Timeout     time.Duration `default:"5m" help:"Give up after this long"`
	LogLevel    string        `short:"l" name:"log-level" help:"Log level (overrides LOG_LEVEL)"`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Description("Play a full game with bot players."))

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn("failed to load .env", "error", err)
	}
	cfg := config.Load()
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	logger := cfg.NewLogger()

	if CLI.Players < cfg.MinPlayers || CLI.Players > cfg.MaxPlayers {
		logger.Error("player count out of range", "players", CLI.Players, "min", cfg.MinPlayers, "max", cfg.MaxPlayers)
		kctx.Exit(1)
	}
	if CLI.Rounds < 1 || CLI.TurnSeconds < 1 {
		logger.Error("need at least 1 round and a 1s turn")
		kctx.Exit(1)
	}
	seed := CLI.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, CLI.Timeout)
	defer cancel()

	if err := run(ctx, cfg, logger, seed); err != nil {
		logger.Error("playtest failed", "seed", seed, "error", err)
		kctx.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger, seed uint64) error {
	var conn *gorm.DB
	if !CLI.Offline && os.Getenv("DATABASE_URL") != "" {
		opened, err := db.Open(cfg)
		if err != nil {
			return err
		}
		conn = opened
	}

	black, white := cards.FallbackDeck()
	var source cards.Source = cards.NewStatic(black, white, rand.New(rand.NewPCG(seed, 1)))
	recorder := stats.Multi{scoreboard{logger: logger}}
	if conn != nil {
		source = &cards.Fallback{Primary: db.NewCatalog(conn, cfg.CardPacks), Secondary: source, Logger: logger}
		recorder = append(recorder, stats.NewStore(conn))
	}

	bots := make([]string, CLI.Players)
	for i := range bots {
		bots[i] = fmt.Sprintf("bot-%d", i+1)
	}
	dir, roomID, err := openRoom(ctx, conn, bots)
	if err != nil {
		return err
	}

	clock := quartz.NewReal()
	engine := game.New(conn, cfg, source,
		game.WithClock(clock),
		game.WithLogger(logger),
		game.WithStats(recorder),
		game.WithRand(rand.New(rand.NewPCG(seed, 2))),
	)
	// Sweep often enough that short playtest turns still expire on time.
	interval := time.Duration(cfg.TimerSweepSeconds) * time.Second
	if turn := time.Duration(CLI.TurnSeconds) * time.Second / 4; interval > turn {
		interval = turn
	}
	supervisor := game.NewSupervisor(engine, clock, interval, logger)
	supervisorCtx, stopSupervisor := context.WithCancel(ctx)
	defer stopSupervisor()
	go supervisor.Run(supervisorCtx)

	g, err := engine.CreateGameForRoom(ctx, dir, roomID)
	if err != nil {
		return err
	}
	if _, err := engine.StartGame(ctx, g.ID); err != nil {
		return err
	}
	logger.Info("playtest started", "game_id", g.ID, "players", len(bots), "rounds", CLI.Rounds, "seed", seed)

	b := &botTable{engine: engine, logger: logger, rng: rand.New(rand.NewPCG(seed, 3)), gameID: g.ID}
	return b.play(ctx)
}

// openRoom registers the bots as a room. With a database the room and its
// members are stored there; otherwise an in-memory directory is used.
func openRoom(ctx context.Context, conn *gorm.DB, bots []string) (rooms.Directory, string, error) {
	settings := rooms.Settings{
		MaxPlayers:           len(bots),
		RoundLimit:           CLI.Rounds,
		TurnTimeLimitSeconds: CLI.TurnSeconds,
	}
	if conn == nil {
		settings.RoomID = uuid.NewString()
		dir := rooms.NewStatic()
		dir.Put(settings, bots...)
		return dir, settings.RoomID, nil
	}
	store := rooms.NewStore(conn)
	room, err := store.Create(ctx, "playtest", bots[0], settings)
	if err != nil {
		return nil, "", err
	}
	for _, bot := range bots[1:] {
		if err := store.Join(ctx, room.ID, bot); err != nil {
			return nil, "", err
		}
	}
	return store, room.ID, nil
}

type botTable struct {
	engine *game.Engine
	logger *log.Logger
	rng    *rand.Rand
	gameID string
	// idle remembers, per round, which bots decided to sit it out.
	idle map[string]map[string]bool
}

func (b *botTable) play(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	b.idle = make(map[string]map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		g, err := b.engine.Game(b.gameID)
		if err != nil {
			return err
		}
		if g.Status == game.StatusEnded {
			return nil
		}
		round, err := b.engine.CurrentRound(b.gameID)
		if err != nil {
			return err
		}
		if err := b.act(ctx, g, round); err != nil {
			return err
		}
	}
}

func (b *botTable) sitsOut(roundID, playerID string) bool {
	seen, ok := b.idle[roundID]
	if !ok {
		seen = make(map[string]bool)
		b.idle[roundID] = seen
	}
	idle, decided := seen[playerID]
	if !decided {
		idle = b.rng.Float64() < CLI.IdleRate
		seen[playerID] = idle
	}
	return idle
}

func (b *botTable) act(ctx context.Context, g game.Game, round game.Round) error {
	switch round.Status {
	case game.RoundCardSelection:
		submitted := make(map[string]bool, len(round.Submissions))
		for _, sub := range round.Submissions {
			submitted[sub.PlayerID] = true
		}
		for _, player := range g.Players {
			if !player.Active || player.ID == round.JudgeID || submitted[player.ID] || len(player.Hand) == 0 {
				continue
			}
			if b.sitsOut(round.ID, player.ID) {
				continue
			}
			card := player.Hand[b.rng.IntN(len(player.Hand))]
			_, err := b.engine.SubmitCard(ctx, round.ID, player.ID, card.ID)
			if ignorable(err) {
				continue
			}
			if err != nil {
				return err
			}
			b.logger.Debug("bot played", "player", player.ID, "card", card.Text)
		}
	case game.RoundJudging:
		if len(round.Submissions) == 0 || b.sitsOut(round.ID, round.JudgeID) {
			return nil
		}
		pick := round.Submissions[b.rng.IntN(len(round.Submissions))]
		ended, err := b.engine.SelectWinner(ctx, round.ID, pick.ID, round.JudgeID)
		if ignorable(err) {
			return nil
		}
		if err != nil {
			return err
		}
		b.logger.Info("round judged", "round", round.Number, "black", round.BlackCard.Text, "winner", pick.PlayerID, "card", pick.Cards[0].Text)
		if ended != nil {
			return nil
		}
		if _, err := b.engine.CreateRound(ctx, b.gameID); err != nil && !ignorable(err) {
			return err
		}
	case game.RoundCompleted:
		// Judged by the timer but the next round could not be opened.
		if _, err := b.engine.CreateRound(ctx, b.gameID); err != nil && !ignorable(err) {
			if errors.Is(err, game.ErrInsufficientCards) {
				_, err = b.engine.EndGameEarly(ctx, b.gameID)
			}
			return err
		}
	}
	return nil
}

// ignorable reports errors caused by the timer acting between our read and
// our write.
func ignorable(err error) bool {
	return errors.Is(err, game.ErrInvalidTransition) ||
		errors.Is(err, game.ErrConcurrencyConflict) ||
		errors.Is(err, game.ErrDuplicateSubmission) ||
		errors.Is(err, game.ErrCardNotInHand)
}

type scoreboard struct {
	logger *log.Logger
}

func (s scoreboard) RecordGameEnd(_ context.Context, gameID string, scores []stats.FinalScore, winnerID *string) error {
	for _, score := range scores {
		s.logger.Info("final score", "player", score.PlayerID, "score", score.Score)
	}
	if winnerID == nil {
		s.logger.Info("game tied", "game_id", gameID)
		return nil
	}
	s.logger.Info("game won", "game_id", gameID, "winner", *winnerID)
	return nil
}
