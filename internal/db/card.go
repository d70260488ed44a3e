package db

import "time"

const (
	CardKindBlack = "black"
	CardKindWhite = "white"
)

type CardPack struct {
	ID             uint      `gorm:"primaryKey"`
	Name           string    `gorm:"size:128;uniqueIndex;not null"`
	BlackCardCount int       `gorm:"not null;default:0"`
	WhiteCardCount int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
	Cards          []Card    `gorm:"foreignKey:PackID"`
}

type Card struct {
	ID        uint      `gorm:"primaryKey"`
	PackID    uint      `gorm:"index;not null;uniqueIndex:idx_cards_pack_text"`
	Kind      string    `gorm:"size:8;not null;index"`
	Text      string    `gorm:"not null;uniqueIndex:idx_cards_pack_text"`
	Pick      int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
