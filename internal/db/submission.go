package db

import (
	"time"

	"gorm.io/datatypes"
)

type Submission struct {
	ID         string         `gorm:"type:uuid;primaryKey"`
	RoundID    string         `gorm:"type:uuid;index;not null;uniqueIndex:idx_submissions_round_player"`
	PlayerID   string         `gorm:"size:64;not null;uniqueIndex:idx_submissions_round_player"`
	WhiteCards datatypes.JSON `gorm:"type:jsonb;not null"`
	IsWinner   bool           `gorm:"not null;default:false"`
	CreatedAt  time.Time      `gorm:"not null"`
}
