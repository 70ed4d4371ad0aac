package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"punchin/internal/domain"
)

type roomModel struct {
	ID         string    `gorm:"column:id;primaryKey;size:64"`
	StudioID   string    `gorm:"column:studio_id;size:64;index"`
	Name       string    `gorm:"column:name"`
	HourlyRate *float64  `gorm:"column:hourly_rate"`
	Capacity   *int      `gorm:"column:capacity"`
	Amenities  []string  `gorm:"column:amenities;serializer:json"`
	IsDefault  bool      `gorm:"column:is_default"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

func toDomainRoom(m roomModel) domain.Room {
	return domain.Room{
		ID:         m.ID,
		StudioID:   m.StudioID,
		Name:       m.Name,
		HourlyRate: m.HourlyRate,
		Capacity:   m.Capacity,
		Amenities:  nonNil(m.Amenities),
		IsDefault:  m.IsDefault,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FetchRooms lists a studio's rooms, the default room first.
func (r *StudioRepository) FetchRooms(ctx context.Context, studioID string) ([]domain.Room, error) {
	var rows []roomModel
	err := r.db.WithContext(ctx).
		Where("studio_id = ?", studioID).
		Order("is_default DESC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}
	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainRoom(m))
	}
	return out, nil
}

func (r *StudioRepository) SaveRoom(ctx context.Context, room *domain.Room) error {
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	m := roomModel{
		ID:         room.ID,
		StudioID:   room.StudioID,
		Name:       room.Name,
		HourlyRate: room.HourlyRate,
		Capacity:   room.Capacity,
		Amenities:  room.Amenities,
		IsDefault:  room.IsDefault,
		CreatedAt:  room.CreatedAt,
		UpdatedAt:  room.UpdatedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}
