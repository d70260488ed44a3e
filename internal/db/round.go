package db

import (
	"time"

	"gorm.io/datatypes"
)

type Round struct {
	ID                  string         `gorm:"type:uuid;primaryKey"`
	GameID              string         `gorm:"type:uuid;index;not null;uniqueIndex:idx_rounds_game_number"`
	Number              int            `gorm:"not null;uniqueIndex:idx_rounds_game_number"`
	BlackCard           datatypes.JSON `gorm:"type:jsonb;not null"`
	JudgeID             string         `gorm:"size:64;not null"`
	Status              string         `gorm:"size:32;not null"`
	PhaseStartedAt      time.Time      `gorm:"not null"`
	WinningSubmissionID *string        `gorm:"type:uuid"`
	WinnerID            *string        `gorm:"size:64"`
	EndedAt             *time.Time
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
	Submissions         []Submission
	Events              []Event
}
