// Package stats records end-of-game results.
package stats

import (
	"context"
	"encoding/json"
	"time"

	"card-czar/internal/db"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FinalScore struct {
	PlayerID string `json:"player_id"`
	Score    int    `json:"score"`
}

// Recorder receives one call per finished game. A nil winnerID means the game
// ended without a single winner.
type Recorder interface {
	RecordGameEnd(ctx context.Context, gameID string, scores []FinalScore, winnerID *string) error
}

// Store writes results into game_results and appends a game_ended event.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

type gameEndedPayload struct {
	Scores   []FinalScore `json:"scores"`
	WinnerID *string      `json:"winner_id"`
	Tie      bool         `json:"tie"`
}

func (s *Store) RecordGameEnd(ctx context.Context, gameID string, scores []FinalScore, winnerID *string) error {
	if s.conn == nil {
		return nil
	}
	payload, err := json.Marshal(gameEndedPayload{Scores: scores, WinnerID: winnerID, Tie: winnerID == nil})
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := make([]db.GameResult, 0, len(scores))
		for _, score := range scores {
			rows = append(rows, db.GameResult{
				GameID:     gameID,
				PlayerID:   score.PlayerID,
				FinalScore: score.Score,
				IsWinner:   winnerID != nil && *winnerID == score.PlayerID,
				CreatedAt:  now,
			})
		}
		if len(rows) > 0 {
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Already recorded.
				return nil
			}
		}
		return tx.Create(&db.Event{
			GameID:  gameID,
			Type:    "game_ended",
			Payload: datatypes.JSON(payload),
		}).Error
	})
}

// Multi fans a result out to several recorders and returns the first error.
type Multi []Recorder

func (m Multi) RecordGameEnd(ctx context.Context, gameID string, scores []FinalScore, winnerID *string) error {
	var first error
	for _, recorder := range m {
		if err := recorder.RecordGameEnd(ctx, gameID, scores, winnerID); err != nil && first == nil {
			first = err
		}
	}
	return first
}
