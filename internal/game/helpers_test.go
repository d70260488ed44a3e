package game

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"testing"

	"card-czar/internal/cards"
	"card-czar/internal/config"
	"card-czar/internal/stats"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

const testTurnSeconds = 60

func testDeck(white int) *cards.Static {
	black := []cards.BlackCard{{Text: "Pick two: _____ and _____.", Pick: 2, Pack: "Test"}}
	for i := 0; i < 20; i++ {
		black = append(black, cards.BlackCard{Text: fmt.Sprintf("prompt %d", i), Pick: 1, Pack: "Test"})
	}
	whites := make([]cards.WhiteCard, 0, white)
	for i := 0; i < white; i++ {
		whites = append(whites, cards.WhiteCard{Text: fmt.Sprintf("answer %d", i), Pack: "Test"})
	}
	return cards.NewStatic(black, whites, rand.New(rand.NewPCG(7, 11)))
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.TurnTimeLimitSeconds = testTurnSeconds
	return cfg
}

type captureRecorder struct {
	mu     sync.Mutex
	games  []string
	scores map[string][]stats.FinalScore
	winner map[string]*string
}

func (c *captureRecorder) RecordGameEnd(_ context.Context, gameID string, scores []stats.FinalScore, winnerID *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scores == nil {
		c.scores = make(map[string][]stats.FinalScore)
		c.winner = make(map[string]*string)
	}
	c.games = append(c.games, gameID)
	c.scores[gameID] = scores
	c.winner[gameID] = winnerID
	return nil
}

func newTestEngine(t *testing.T, source cards.Source, opts ...Option) (*Engine, *quartz.Mock) {
	t.Helper()
	mock := quartz.NewMock(t)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	base := []Option{
		WithClock(mock),
		WithLogger(logger),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	return New(nil, testConfig(), source, append(base, opts...)...), mock
}

// startGame creates and starts a game over players with the given round limit.
func startGame(t *testing.T, e *Engine, roundLimit int, players ...string) (Game, Round) {
	t.Helper()
	ctx := context.Background()
	game, err := e.CreateGame(ctx, Room{ID: "room-" + t.Name(), RoundLimit: roundLimit}, players)
	require.NoError(t, err)
	round, err := e.StartGame(ctx, game.ID)
	require.NoError(t, err)
	game, err = e.Game(game.ID)
	require.NoError(t, err)
	return game, round
}

func nonJudges(t *testing.T, e *Engine, gameID string, round Round) []string {
	t.Helper()
	game, err := e.Game(gameID)
	require.NoError(t, err)
	var out []string
	for _, player := range game.Players {
		if player.Active && player.ID != round.JudgeID {
			out = append(out, player.ID)
		}
	}
	return out
}

// submitFirst plays the first card of the player's hand.
func submitFirst(t *testing.T, e *Engine, gameID string, round Round, playerID string) Submission {
	t.Helper()
	hand, err := e.Hand(gameID, playerID)
	require.NoError(t, err)
	require.NotEmpty(t, hand)
	submission, err := e.SubmitCard(context.Background(), round.ID, playerID, hand[0].ID)
	require.NoError(t, err)
	return submission
}

// submitAll has every non-judge submit and returns submissions by player.
func submitAll(t *testing.T, e *Engine, gameID string, round Round) map[string]Submission {
	t.Helper()
	out := make(map[string]Submission)
	for _, playerID := range nonJudges(t, e, gameID, round) {
		out[playerID] = submitFirst(t, e, gameID, round, playerID)
	}
	return out
}

func requireNoDuplicateTexts(t *testing.T, game Game) {
	t.Helper()
	seen := make(map[string]string)
	for _, player := range game.Players {
		if !player.Active {
			continue
		}
		for _, card := range player.Hand {
			owner, dup := seen[card.Text]
			require.False(t, dup, "%q held by %s and %s", card.Text, owner, player.ID)
			seen[card.Text] = player.ID
			require.Contains(t, game.Dealt, card.Text)
		}
	}
}
