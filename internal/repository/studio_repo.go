package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"punchin/internal/domain"
)

type StudioRepository struct {
	db *gorm.DB
}

func NewStudioRepository(db *gorm.DB) *StudioRepository {
	return &StudioRepository{db: db}
}

type studioModel struct {
	ID                  string                      `gorm:"column:id;primaryKey;size:64"`
	OwnerID             string                      `gorm:"column:owner_id;size:64;index"`
	Name                string                      `gorm:"column:name"`
	City                string                      `gorm:"column:city;index"`
	Address             string                      `gorm:"column:address"`
	HourlyRate          *float64                    `gorm:"column:hourly_rate"`
	ApprovedEngineerIDs []string                    `gorm:"column:approved_engineer_ids;serializer:json"`
	AutoApproveRequests bool                        `gorm:"column:auto_approve_requests"`
	TimeZone            string                      `gorm:"column:time_zone"`
	RecurringHours      []domain.RecurringTimeRange `gorm:"column:recurring_hours;serializer:json"`
	BlackoutDates       []string                    `gorm:"column:blackout_dates;serializer:json"`
	CreatedAt           time.Time                   `gorm:"column:created_at"`
	UpdatedAt           time.Time                   `gorm:"column:updated_at"`
}

func (studioModel) TableName() string { return "studios" }

func toDomainStudio(m studioModel) domain.Studio {
	tz := m.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	return domain.Studio{
		ID:                  m.ID,
		OwnerID:             m.OwnerID,
		Name:                m.Name,
		City:                m.City,
		Address:             m.Address,
		HourlyRate:          m.HourlyRate,
		ApprovedEngineerIDs: nonNil(m.ApprovedEngineerIDs),
		AutoApproveRequests: m.AutoApproveRequests,
		OperatingSchedule: domain.OperatingSchedule{
			TimeZone:       tz,
			RecurringHours: m.RecurringHours,
			BlackoutDates:  nonNil(m.BlackoutDates),
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toStudioModel(s domain.Studio) studioModel {
	return studioModel{
		ID:                  s.ID,
		OwnerID:             s.OwnerID,
		Name:                s.Name,
		City:                s.City,
		Address:             s.Address,
		HourlyRate:          s.HourlyRate,
		ApprovedEngineerIDs: s.ApprovedEngineerIDs,
		AutoApproveRequests: s.AutoApproveRequests,
		TimeZone:            s.OperatingSchedule.TimeZone,
		RecurringHours:      s.OperatingSchedule.RecurringHours,
		BlackoutDates:       s.OperatingSchedule.BlackoutDates,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func (r *StudioRepository) FetchStudios(ctx context.Context) ([]domain.Studio, error) {
	var rows []studioModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch studios: %w", err)
	}
	out := make([]domain.Studio, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainStudio(m))
	}
	return out, nil
}

func (r *StudioRepository) LoadStudio(ctx context.Context, id string) (*domain.Studio, error) {
	var m studioModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("studio %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load studio: %w", err)
	}
	s := toDomainStudio(m)
	return &s, nil
}

// SaveStudio inserts or fully replaces a studio.
func (r *StudioRepository) SaveStudio(ctx context.Context, s *domain.Studio) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m := toStudioModel(*s)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
