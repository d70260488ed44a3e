package db

import "time"

type Game struct {
	ID                   string     `gorm:"type:uuid;primaryKey"`
	RoomID               string     `gorm:"type:uuid;index;not null"`
	Status               string     `gorm:"size:16;not null"`
	CurrentRoundNumber   int        `gorm:"not null;default:0"`
	WinnerID             *string    `gorm:"size:64"`
	Tie                  bool       `gorm:"not null;default:false"`
	RoundLimit           int        `gorm:"not null"`
	TurnTimeLimitSeconds int        `gorm:"not null"`
	StartedAt            *time.Time
	EndedAt              *time.Time
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
	Players              []Player
	Rounds               []Round
	Events               []Event
}
