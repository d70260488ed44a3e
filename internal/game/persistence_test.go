package game

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"card-czar/internal/db"
	"card-czar/internal/db/dbtest"
	"card-czar/internal/stats"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistedGameMatchesMemory(t *testing.T) {
	conn := dbtest.Open(t)
	mock := quartz.NewMock(t)
	e := New(conn, testConfig(), testDeck(80),
		WithClock(mock),
		WithLogger(log.NewWithOptions(io.Discard, log.Options{})),
		WithStats(stats.NewStore(conn)),
	)
	ctx := context.Background()

	game, err := e.CreateGame(ctx, Room{ID: uuid.NewString(), RoundLimit: 2}, []string{"alice", "bob", "carol"})
	require.NoError(t, err)
	round, err := e.StartGame(ctx, game.ID)
	require.NoError(t, err)

	subs := submitAll(t, e, game.ID, round)
	var pick Submission
	for _, sub := range subs {
		pick = sub
	}
	_, err = e.SelectWinner(ctx, round.ID, pick.ID, round.JudgeID)
	require.NoError(t, err)

	second, err := e.CreateRound(ctx, game.ID)
	require.NoError(t, err)
	mock.Advance(testTurnSeconds * time.Second).MustWait(ctx)
	_, err = e.CheckTimer(ctx, second.ID)
	require.NoError(t, err)
	mock.Advance(testTurnSeconds * time.Second).MustWait(ctx)
	_, err = e.CheckTimer(ctx, second.ID)
	require.NoError(t, err)

	final, err := e.Game(game.ID)
	require.NoError(t, err)
	require.Equal(t, StatusEnded, final.Status)

	var stored db.Game
	require.NoError(t, conn.Where("id = ?", game.ID).First(&stored).Error)
	assert.Equal(t, string(StatusEnded), stored.Status)
	assert.Equal(t, 2, stored.CurrentRoundNumber)
	require.NotNil(t, stored.WinnerID)
	assert.Equal(t, pick.PlayerID, *stored.WinnerID)
	assert.False(t, stored.Tie)

	var rounds []db.Round
	require.NoError(t, conn.Where("game_id = ?", game.ID).Order("number").Find(&rounds).Error)
	require.Len(t, rounds, 2)
	assert.Equal(t, string(RoundCompleted), rounds[0].Status)
	require.NotNil(t, rounds[0].WinningSubmissionID)
	assert.Equal(t, pick.ID, *rounds[0].WinningSubmissionID)
	assert.Equal(t, string(RoundCompleted), rounds[1].Status)
	assert.Nil(t, rounds[1].WinnerID)

	var players []db.Player
	require.NoError(t, conn.Where("game_id = ?", game.ID).Order("turn_order").Find(&players).Error)
	require.Len(t, players, 3)
	for _, player := range players {
		var hand []CardHandle
		require.NoError(t, json.Unmarshal(player.Hand, &hand))
		assert.Equal(t, final.player(player.UserID).Hand, hand, player.UserID)
		assert.Equal(t, final.player(player.UserID).Score, player.Score, player.UserID)
	}

	var ledger int64
	require.NoError(t, conn.Model(&db.DealtCard{}).Where("game_id = ? AND kind = ?", game.ID, db.CardKindWhite).Count(&ledger).Error)
	assert.Equal(t, int64(len(final.Dealt)), ledger)

	var results int64
	require.NoError(t, conn.Model(&db.GameResult{}).Where("game_id = ?", game.ID).Count(&results).Error)
	assert.Equal(t, int64(3), results)

	// A stale status write is refused by the forward-only update.
	e.persistRoundStatus(ctx, final, final.Rounds[0], RoundJudging)
	require.NoError(t, conn.Where("id = ?", round.ID).First(&rounds[0]).Error)
	assert.Equal(t, string(RoundCompleted), rounds[0].Status)
}
