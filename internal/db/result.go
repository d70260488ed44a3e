package db

import "time"

type GameResult struct {
	ID         uint      `gorm:"primaryKey"`
	GameID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_game_results_game_player"`
	PlayerID   string    `gorm:"size:64;not null;uniqueIndex:idx_game_results_game_player"`
	FinalScore int       `gorm:"not null"`
	IsWinner   bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`
}
