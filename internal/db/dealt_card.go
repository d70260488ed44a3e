package db

import "time"

// DealtCard is one entry of a game's ledger of card texts already handed out.
type DealtCard struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_dealt_cards_game_kind_text"`
	Kind      string    `gorm:"size:8;not null;uniqueIndex:idx_dealt_cards_game_kind_text"`
	Text      string    `gorm:"not null;uniqueIndex:idx_dealt_cards_game_kind_text"`
	CreatedAt time.Time `gorm:"not null"`
}
