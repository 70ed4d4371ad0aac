package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"punchin/internal/domain"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileModel struct {
	ID                            string     `gorm:"column:id;primaryKey;size:64"`
	DisplayName                   string     `gorm:"column:display_name"`
	Role                          string     `gorm:"column:role"`
	IsPremium                     bool       `gorm:"column:is_premium"`
	InstantBookEnabled            bool       `gorm:"column:instant_book_enabled"`
	MainStudioID                  *string    `gorm:"column:main_studio_id"`
	AllowOtherStudios             bool       `gorm:"column:allow_other_studios"`
	MainStudioSelectedAt          *time.Time `gorm:"column:main_studio_selected_at"`
	DefaultSessionDurationMinutes int        `gorm:"column:default_session_duration_minutes"`
	CreatedAt                     time.Time  `gorm:"column:created_at"`
	UpdatedAt                     time.Time  `gorm:"column:updated_at"`
}

func (profileModel) TableName() string { return "user_profiles" }

func toDomainProfile(m profileModel) domain.UserProfile {
	duration := m.DefaultSessionDurationMinutes
	if duration <= 0 {
		duration = domain.DefaultSessionDurationMinutes
	}
	return domain.UserProfile{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		Role:        domain.UserRole(m.Role),
		Engineer: domain.EngineerSettings{
			IsPremium:                     m.IsPremium,
			InstantBookEnabled:            m.InstantBookEnabled,
			MainStudioID:                  deref(m.MainStudioID),
			AllowOtherStudios:             m.AllowOtherStudios,
			MainStudioSelectedAt:          m.MainStudioSelectedAt,
			DefaultSessionDurationMinutes: duration,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FetchUserProfiles returns the profiles that exist among ids, in no particular order.
func (r *ProfileRepository) FetchUserProfiles(ctx context.Context, ids []string) ([]domain.UserProfile, error) {
	if len(ids) == 0 {
		return []domain.UserProfile{}, nil
	}
	var rows []profileModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	out := make([]domain.UserProfile, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainProfile(m))
	}
	return out, nil
}

func (r *ProfileRepository) SaveProfile(ctx context.Context, p *domain.UserProfile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	m := profileModel{
		ID:                            p.ID,
		DisplayName:                   p.DisplayName,
		Role:                          string(p.Role),
		IsPremium:                     p.Engineer.IsPremium,
		InstantBookEnabled:            p.Engineer.InstantBookEnabled,
		MainStudioID:                  ptr(p.Engineer.MainStudioID),
		AllowOtherStudios:             p.Engineer.AllowOtherStudios,
		MainStudioSelectedAt:          p.Engineer.MainStudioSelectedAt,
		DefaultSessionDurationMinutes: p.Engineer.DefaultSessionDurationMinutes,
		CreatedAt:                     p.CreatedAt,
		UpdatedAt:                     p.UpdatedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}
