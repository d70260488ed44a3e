package db

import (
	"time"

	"gorm.io/datatypes"
)

type Player struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    string         `gorm:"type:uuid;index;not null;uniqueIndex:idx_game_players_game_user"`
	UserID    string         `gorm:"size:64;not null;uniqueIndex:idx_game_players_game_user"`
	Score     int            `gorm:"not null;default:0"`
	TurnOrder int            `gorm:"not null"`
	Hand      datatypes.JSON `gorm:"type:jsonb;not null"`
	IsActive  bool           `gorm:"not null;default:true"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (Player) TableName() string {
	return "game_players"
}
