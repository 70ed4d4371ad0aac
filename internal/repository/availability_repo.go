package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"punchin/internal/domain"
)

type AvailabilityRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAvailabilityRepository(db *gorm.DB, log *zap.Logger) *AvailabilityRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &AvailabilityRepository{db: db, log: log}
}

// availabilityModel stores both entry shapes in one table. Exactly one of the recurring
// column group or the absolute column group is set.
type availabilityModel struct {
	ID              string     `gorm:"column:id;primaryKey;size:64"`
	Kind            string     `gorm:"column:kind"`
	Scope           string     `gorm:"column:scope;index:idx_availability_owner"`
	OwnerID         string     `gorm:"column:owner_id;size:64;index:idx_availability_owner"`
	StudioID        *string    `gorm:"column:studio_id"`
	RoomID          *string    `gorm:"column:room_id"`
	EngineerID      *string    `gorm:"column:engineer_id"`
	SourceBookingID *string    `gorm:"column:source_booking_id;index"`
	CreatedBy       *string    `gorm:"column:created_by"`
	Note            *string    `gorm:"column:note"`
	Weekday         *int       `gorm:"column:weekday"`
	StartMinutes    *int       `gorm:"column:start_minutes"`
	DurationMinutes *int       `gorm:"column:duration_minutes"`
	StartsAt        *time.Time `gorm:"column:starts_at"`
	EndsAt          *time.Time `gorm:"column:ends_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (availabilityModel) TableName() string { return "availability_entries" }

func toDomainAvailability(m availabilityModel) (domain.AvailabilityEntry, error) {
	h := domain.EntryHeader{
		ID:              m.ID,
		Kind:            domain.AvailabilityKind(m.Kind),
		Scope:           domain.AvailabilityScope(m.Scope),
		OwnerID:         m.OwnerID,
		StudioID:        deref(m.StudioID),
		RoomID:          deref(m.RoomID),
		EngineerID:      deref(m.EngineerID),
		SourceBookingID: deref(m.SourceBookingID),
		CreatedBy:       deref(m.CreatedBy),
		Note:            deref(m.Note),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	hasRecurring := m.Weekday != nil && m.StartMinutes != nil && m.DurationMinutes != nil
	hasAbsolute := m.StartsAt != nil && m.EndsAt != nil
	switch {
	case hasRecurring && !hasAbsolute:
		return domain.NewRecurringEntry(h, domain.RecurringWindow{
			Weekday:         *m.Weekday,
			StartMinutes:    *m.StartMinutes,
			DurationMinutes: *m.DurationMinutes,
		})
	case hasAbsolute && !hasRecurring:
		return domain.NewAbsoluteEntry(h, domain.AbsoluteWindow{Start: *m.StartsAt, End: *m.EndsAt})
	default:
		return domain.AvailabilityEntry{}, fmt.Errorf("%w: entry %s", domain.ErrMalformedEntry, m.ID)
	}
}

func toAvailabilityModel(e domain.AvailabilityEntry) availabilityModel {
	m := availabilityModel{
		ID:              e.ID,
		Kind:            string(e.Kind),
		Scope:           string(e.Scope),
		OwnerID:         e.OwnerID,
		StudioID:        ptr(e.StudioID),
		RoomID:          ptr(e.RoomID),
		EngineerID:      ptr(e.EngineerID),
		SourceBookingID: ptr(e.SourceBookingID),
		CreatedBy:       ptr(e.CreatedBy),
		Note:            ptr(e.Note),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if w, ok := e.Recurring(); ok {
		m.Weekday, m.StartMinutes, m.DurationMinutes = &w.Weekday, &w.StartMinutes, &w.DurationMinutes
	}
	if w, ok := e.Absolute(); ok {
		start, end := w.Start.UTC(), w.End.UTC()
		m.StartsAt, m.EndsAt = &start, &end
	}
	return m
}

// FetchAvailability lists an owner's entries. Malformed rows are logged and skipped.
func (r *AvailabilityRepository) FetchAvailability(ctx context.Context, scope domain.AvailabilityScope, ownerID string) ([]domain.AvailabilityEntry, error) {
	var rows []availabilityModel
	err := r.db.WithContext(ctx).
		Where("scope = ? AND owner_id = ?", string(scope), ownerID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch availability: %w", err)
	}

	out := make([]domain.AvailabilityEntry, 0, len(rows))
	for _, m := range rows {
		e, err := toDomainAvailability(m)
		if err != nil {
			r.log.Warn("skipping availability entry", zap.String("id", m.ID), zap.Error(err))
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *AvailabilityRepository) LoadAvailability(ctx context.Context, id string) (*domain.AvailabilityEntry, error) {
	var m availabilityModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("availability %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}
	e, err := toDomainAvailability(m)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *AvailabilityRepository) CreateAvailability(ctx context.Context, e *domain.AvailabilityEntry) error {
	m := toAvailabilityModel(*e)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

func (r *AvailabilityRepository) DeleteAvailability(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&availabilityModel{})
	if res.Error != nil {
		return fmt.Errorf("delete availability: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("availability %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
