package rooms

import (
	"context"
	"errors"
	"time"

	"card-czar/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the Postgres-backed Directory. It also owns room lifecycle
// operations used by the admin commands.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) ActiveMembers(ctx context.Context, roomID string) ([]string, error) {
	if err := s.ensureRoom(ctx, roomID); err != nil {
		return nil, err
	}
	var members []string
	err := s.conn.WithContext(ctx).
		Model(&db.RoomMember{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Order("joined_at ASC, id ASC").
		Pluck("user_id", &members).Error
	return members, err
}

func (s *Store) Settings(ctx context.Context, roomID string) (Settings, error) {
	var room db.Room
	if err := s.conn.WithContext(ctx).Where("id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Settings{}, ErrRoomNotFound
		}
		return Settings{}, err
	}
	return Settings{
		RoomID:               room.ID,
		MaxPlayers:           room.MaxPlayers,
		RoundLimit:           room.RoundLimit,
		TurnTimeLimitSeconds: room.TurnTimeLimitSeconds,
	}, nil
}

func (s *Store) ensureRoom(ctx context.Context, roomID string) error {
	var count int64
	if err := s.conn.WithContext(ctx).Model(&db.Room{}).Where("id = ?", roomID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Create inserts a room with a fresh code, retrying on code collisions, and
// adds the creator as its first member.
func (s *Store) Create(ctx context.Context, name, creatorID string, settings Settings) (db.Room, error) {
	now := time.Now().UTC()
	for attempt := 0; attempt < 5; attempt++ {
		room := db.Room{
			ID:                   uuid.NewString(),
			Code:                 NewCode(),
			Name:                 name,
			CreatorID:            creatorID,
			MaxPlayers:           settings.MaxPlayers,
			RoundLimit:           settings.RoundLimit,
			TurnTimeLimitSeconds: settings.TurnTimeLimitSeconds,
			IsActive:             true,
		}
		err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&room).Error; err != nil {
				return err
			}
			return tx.Create(&db.RoomMember{RoomID: room.ID, UserID: creatorID, IsActive: true, JoinedAt: now}).Error
		})
		if err == nil {
			return room, nil
		}
		if !isUniqueViolation(err) {
			return db.Room{}, err
		}
	}
	return db.Room{}, errors.New("could not allocate a room code")
}

// Join adds userID to the room, reactivating a previous membership.
func (s *Store) Join(ctx context.Context, roomID, userID string) error {
	if err := s.ensureRoom(ctx, roomID); err != nil {
		return err
	}
	member := db.RoomMember{RoomID: roomID, UserID: userID, IsActive: true, JoinedAt: time.Now().UTC()}
	return s.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{"is_active": true}),
		}).
		Create(&member).Error
}

// Leave marks the membership inactive. Unknown members are ignored.
func (s *Store) Leave(ctx context.Context, roomID, userID string) error {
	return s.conn.WithContext(ctx).
		Model(&db.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("is_active", false).Error
}

// Prune deletes active rooms created before cutoff in batches and reports how
// many were removed. With dryRun set nothing is deleted and the matching rooms
// are returned instead.
func (s *Store) Prune(ctx context.Context, cutoff time.Time, batchSize int, dryRun bool) (int, []db.Room, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	stale := s.conn.WithContext(ctx).Model(&db.Room{}).Where("created_at < ? AND is_active = ?", cutoff, true)
	if dryRun {
		var rooms []db.Room
		err := stale.Order("created_at ASC").Find(&rooms).Error
		return 0, rooms, err
	}
	deleted := 0
	for {
		var ids []string
		if err := s.conn.WithContext(ctx).Model(&db.Room{}).
			Where("created_at < ? AND is_active = ?", cutoff, true).
			Limit(batchSize).
			Pluck("id", &ids).Error; err != nil {
			return deleted, nil, err
		}
		if len(ids) == 0 {
			return deleted, nil, nil
		}
		err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("room_id IN ?", ids).Delete(&db.RoomMember{}).Error; err != nil {
				return err
			}
			return tx.Where("id IN ?", ids).Delete(&db.Room{}).Error
		})
		if err != nil {
			return deleted, nil, err
		}
		deleted += len(ids)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
