package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"card-czar/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The persist functions mirror committed in-memory state into the database.
// They run after the game lock is released. Nothing is written when the
// engine has no connection, and failures are logged rather than returned.

func (e *Engine) persistGame(ctx context.Context, game Game) {
	if e.db == nil {
		return
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := db.Game{
			ID:                   game.ID,
			RoomID:               game.RoomID,
			Status:               string(game.Status),
			RoundLimit:           game.RoundLimit,
			TurnTimeLimitSeconds: game.TurnTimeLimitSeconds,
			CreatedAt:            game.CreatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
			return err
		}
		players := make([]db.Player, 0, len(game.Players))
		for _, player := range game.Players {
			players = append(players, db.Player{
				GameID:    game.ID,
				UserID:    player.ID,
				TurnOrder: player.TurnOrder,
				Hand:      datatypes.JSON("[]"),
				IsActive:  player.Active,
			})
		}
		if len(players) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&players).Error; err != nil {
				return err
			}
		}
		return writeEvent(tx, game.ID, nil, nil, "game_created", EventPayload{
			RoomID: game.RoomID,
			Count:  len(game.Players),
		})
	})
	e.warnPersist("game", game.ID, err)
}

func (e *Engine) persistStart(ctx context.Context, game Game, dealt map[string][]CardHandle) {
	if e.db == nil {
		return
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		startedAt := game.StartedAt
		result := tx.Model(&db.Game{}).
			Where("id = ? AND status = ?", game.ID, string(StatusWaiting)).
			Updates(map[string]any{
				"status":     string(game.Status),
				"started_at": &startedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: game %s already started", ErrConcurrencyConflict, game.ID)
		}
		for _, player := range game.activePlayers() {
			if err := writeHand(tx, game.ID, *player); err != nil {
				return err
			}
			if err := writeLedger(tx, game.ID, db.CardKindWhite, dealt[player.ID]); err != nil {
				return err
			}
		}
		return writeEvent(tx, game.ID, nil, nil, "game_started", EventPayload{
			RoomID: game.RoomID,
			Count:  len(game.activePlayers()),
		})
	})
	e.warnPersist("game start", game.ID, err)
}

func (e *Engine) persistRound(ctx context.Context, game Game, round Round) {
	if e.db == nil {
		return
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		black, err := json.Marshal(round.BlackCard)
		if err != nil {
			return err
		}
		record := db.Round{
			ID:             round.ID,
			GameID:         game.ID,
			Number:         round.Number,
			BlackCard:      datatypes.JSON(black),
			JudgeID:        round.JudgeID,
			Status:         string(round.Status),
			PhaseStartedAt: round.PhaseStartedAt,
		}
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: round %d of game %s exists", ErrConcurrencyConflict, round.Number, game.ID)
			}
			return err
		}
		ledger := db.DealtCard{GameID: game.ID, Kind: db.CardKindBlack, Text: round.BlackCard.Text}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ledger).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.Game{}).
			Where("id = ? AND current_round_number < ?", game.ID, round.Number).
			Update("current_round_number", round.Number).Error; err != nil {
			return err
		}
		roundID := round.ID
		return writeEvent(tx, game.ID, &roundID, nil, "round_started", EventPayload{
			RoundNumber: round.Number,
			JudgeID:     round.JudgeID,
			BlackCard:   round.BlackCard.Text,
		})
	})
	e.warnPersist("round", game.ID, err)
}

// earlierStatuses lists the statuses a round may move to status from.
func earlierStatuses(status RoundStatus) []string {
	var out []string
	for _, candidate := range []RoundStatus{RoundCardSelection, RoundJudging, RoundCompleted} {
		if candidate.rank() < status.rank() {
			out = append(out, string(candidate))
		}
	}
	return out
}

// persistRoundStatus only ever moves the stored round forward.
func (e *Engine) persistRoundStatus(ctx context.Context, game Game, round Round, status RoundStatus) {
	if e.db == nil {
		return
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":           string(status),
			"phase_started_at": round.PhaseStartedAt,
		}
		if status == RoundCompleted {
			endedAt := round.EndedAt
			updates["ended_at"] = &endedAt
		}
		result := tx.Model(&db.Round{}).
			Where("id = ? AND status IN ?", round.ID, earlierStatuses(status)).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: round %s is not before %s", ErrConcurrencyConflict, round.ID, status)
		}
		roundID := round.ID
		return writeEvent(tx, game.ID, &roundID, nil, "round_"+string(status), EventPayload{
			RoundNumber: round.Number,
			Phase:       string(status),
			Count:       len(round.Submissions),
		})
	})
	e.warnPersist("round status", game.ID, err)
}

func (e *Engine) persistSubmission(ctx context.Context, game Game, submission Submission, refill []CardHandle) {
	if e.db == nil {
		return
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cardsJSON, err := json.Marshal(submission.Cards)
		if err != nil {
			return err
		}
		record := db.Submission{
			ID:         submission.ID,
			RoundID:    submission.RoundID,
			PlayerID:   submission.PlayerID,
			WhiteCards: datatypes.JSON(cardsJSON),
			CreatedAt:  submission.SubmittedAt,
		}
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s in round %s", ErrDuplicateSubmission, submission.PlayerID, submission.RoundID)
			}
			return err
		}
		if player := game.player(submission.PlayerID); player != nil {
			if err := writeHand(tx, game.ID, *player); err != nil {
				return err
			}
		}
		if err := writeLedger(tx, game.ID, db.CardKindWhite, refill); err != nil {
			return err
		}
		roundID, playerID := submission.RoundID, submission.PlayerID
		return writeEvent(tx, game.ID, &roundID, &playerID, "card_submitted", EventPayload{
			PlayerID:     submission.PlayerID,
			SubmissionID: submission.ID,
		})
	})
	e.warnPersist("submission", game.ID, err)
}

func (e *Engine) persistWinner(ctx context.Context, game Game, round Round, winnerID string) {
	if e.db == nil {
		return
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		endedAt := round.EndedAt
		submissionID := round.WinningSubmissionID
		winner := winnerID
		result := tx.Model(&db.Round{}).
			Where("id = ? AND status IN ?", round.ID, earlierStatuses(RoundCompleted)).
			Updates(map[string]any{
				"status":                string(RoundCompleted),
				"phase_started_at":      round.PhaseStartedAt,
				"winning_submission_id": &submissionID,
				"winner_id":             &winner,
				"ended_at":              &endedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: round %s already completed", ErrConcurrencyConflict, round.ID)
		}
		if err := tx.Model(&db.Submission{}).Where("id = ?", submissionID).Update("is_winner", true).Error; err != nil {
			return err
		}
		if player := game.player(winnerID); player != nil {
			if err := tx.Model(&db.Player{}).
				Where("game_id = ? AND user_id = ?", game.ID, winnerID).
				Update("score", player.Score).Error; err != nil {
				return err
			}
		}
		roundID := round.ID
		return writeEvent(tx, game.ID, &roundID, &winner, "round_judged", EventPayload{
			RoundNumber:  round.Number,
			SubmissionID: submissionID,
			WinnerID:     winnerID,
		})
	})
	e.warnPersist("winner", game.ID, err)
}

func (e *Engine) persistGameEnd(ctx context.Context, game Game, reason string) {
	if e.db == nil {
		return
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var winner *string
		if game.HasSingleWinner() {
			id := game.WinnerID
			winner = &id
		}
		endedAt := game.EndedAt
		result := tx.Model(&db.Game{}).
			Where("id = ? AND status <> ?", game.ID, string(StatusEnded)).
			Updates(map[string]any{
				"status":    string(StatusEnded),
				"winner_id": winner,
				"tie":       game.Tie,
				"ended_at":  &endedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: game %s already ended", ErrConcurrencyConflict, game.ID)
		}
		return writeEvent(tx, game.ID, nil, nil, "game_finished", EventPayload{
			Reason:   reason,
			WinnerID: game.WinnerID,
			Tie:      game.Tie,
		})
	})
	e.warnPersist("game end", game.ID, err)
}

func (e *Engine) persistPlayerRemoved(ctx context.Context, game Game, playerID string) {
	if e.db == nil {
		return
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Player{}).
			Where("game_id = ? AND user_id = ?", game.ID, playerID).
			Updates(map[string]any{
				"is_active": false,
				"hand":      datatypes.JSON("[]"),
			}).Error; err != nil {
			return err
		}
		player := playerID
		return writeEvent(tx, game.ID, nil, &player, "player_removed", EventPayload{PlayerID: playerID})
	})
	e.warnPersist("player removal", game.ID, err)
}

func writeHand(tx *gorm.DB, gameID string, player Player) error {
	hand := player.Hand
	if hand == nil {
		hand = []CardHandle{}
	}
	data, err := json.Marshal(hand)
	if err != nil {
		return err
	}
	return tx.Model(&db.Player{}).
		Where("game_id = ? AND user_id = ?", gameID, player.ID).
		Update("hand", datatypes.JSON(data)).Error
}

func writeLedger(tx *gorm.DB, gameID, kind string, dealt []CardHandle) error {
	if len(dealt) == 0 {
		return nil
	}
	rows := make([]db.DealtCard, 0, len(dealt))
	for _, card := range dealt {
		rows = append(rows, db.DealtCard{GameID: gameID, Kind: kind, Text: card.Text})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func writeEvent(tx *gorm.DB, gameID string, roundID, playerID *string, eventType string, payload EventPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		GameID:   gameID,
		RoundID:  roundID,
		PlayerID: playerID,
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	return tx.Create(&event).Error
}

func (e *Engine) warnPersist(what, gameID string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrDuplicateSubmission) {
		e.logger.Warn("stale write skipped", "what", what, "game_id", gameID, "error", err)
		return
	}
	e.logger.Error("persist failed", "what", what, "game_id", gameID, "error", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
