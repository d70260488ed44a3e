package db

import "time"

type Room struct {
	ID                   string    `gorm:"type:uuid;primaryKey"`
	Code                 string    `gorm:"size:6;uniqueIndex;not null"`
	Name                 string    `gorm:"size:100;not null"`
	CreatorID            string    `gorm:"size:64;not null"`
	MaxPlayers           int       `gorm:"not null;default:8"`
	RoundLimit           int       `gorm:"not null;default:10"`
	TurnTimeLimitSeconds int       `gorm:"not null;default:120"`
	IsActive             bool      `gorm:"not null;default:true"`
	CreatedAt            time.Time `gorm:"not null;index"`
	UpdatedAt            time.Time `gorm:"not null"`
	Members              []RoomMember
}

type RoomMember struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_room_members_room_user"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_room_members_room_user"`
	IsActive  bool      `gorm:"not null;default:true"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
