package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"punchin/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                       string     `gorm:"column:id;primaryKey;size:64"`
	ArtistID                 string     `gorm:"column:artist_id;size:64;index"`
	StudioID                 string     `gorm:"column:studio_id;size:64;index:idx_bookings_room"`
	RoomID                   string     `gorm:"column:room_id;size:64;index:idx_bookings_room"`
	EngineerID               string     `gorm:"column:engineer_id;size:64;index"`
	Status                   string     `gorm:"column:status"`
	RequestedStart           time.Time  `gorm:"column:requested_start"`
	RequestedEnd             time.Time  `gorm:"column:requested_end"`
	ConfirmedStart           *time.Time `gorm:"column:confirmed_start"`
	ConfirmedEnd             *time.Time `gorm:"column:confirmed_end"`
	DurationMinutes          int        `gorm:"column:duration_minutes"`
	HourlyRate               *float64   `gorm:"column:hourly_rate"`
	TotalPrice               *float64   `gorm:"column:total_price"`
	Currency                 *string    `gorm:"column:currency"`
	InstantBook              bool       `gorm:"column:instant_book"`
	RequiresStudioApproval   bool       `gorm:"column:requires_studio_approval"`
	RequiresEngineerApproval bool       `gorm:"column:requires_engineer_approval"`
	ResolvedBy               *string    `gorm:"column:resolved_by"`
	ResolvedAt               *time.Time `gorm:"column:resolved_at"`
	ConversationID           *string    `gorm:"column:conversation_id"`
	Notes                    *string    `gorm:"column:notes"`
	CreatedAt                time.Time  `gorm:"column:created_at"`
	UpdatedAt                time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) domain.Booking {
	duration := m.DurationMinutes
	if duration <= 0 {
		duration = domain.DefaultBookingDurationMinutes
	}

	var pricing *domain.BookingPricing
	if m.HourlyRate != nil && m.TotalPrice != nil {
		pricing = &domain.BookingPricing{
			HourlyRate: *m.HourlyRate,
			Total:      *m.TotalPrice,
			Currency:   deref(m.Currency),
		}
	}

	return domain.Booking{
		ID:              m.ID,
		ArtistID:        m.ArtistID,
		StudioID:        m.StudioID,
		RoomID:          m.RoomID,
		EngineerID:      m.EngineerID,
		Status:          domain.ParseBookingStatus(m.Status),
		RequestedStart:  m.RequestedStart,
		RequestedEnd:    m.RequestedEnd,
		ConfirmedStart:  m.ConfirmedStart,
		ConfirmedEnd:    m.ConfirmedEnd,
		DurationMinutes: duration,
		Pricing:         pricing,
		InstantBook:     m.InstantBook,
		Approval: domain.BookingApprovalState{
			RequiresStudioApproval:   m.RequiresStudioApproval,
			RequiresEngineerApproval: m.RequiresEngineerApproval,
			ResolvedBy:               deref(m.ResolvedBy),
			ResolvedAt:               m.ResolvedAt,
		},
		ConversationID: deref(m.ConversationID),
		Notes:          deref(m.Notes),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toBookingModel(b domain.Booking) bookingModel {
	m := bookingModel{
		ID:                       b.ID,
		ArtistID:                 b.ArtistID,
		StudioID:                 b.StudioID,
		RoomID:                   b.RoomID,
		EngineerID:               b.EngineerID,
		Status:                   string(b.Status),
		RequestedStart:           b.RequestedStart.UTC(),
		RequestedEnd:             b.RequestedEnd.UTC(),
		ConfirmedStart:           utcPtr(b.ConfirmedStart),
		ConfirmedEnd:             utcPtr(b.ConfirmedEnd),
		DurationMinutes:          b.DurationMinutes,
		InstantBook:              b.InstantBook,
		RequiresStudioApproval:   b.Approval.RequiresStudioApproval,
		RequiresEngineerApproval: b.Approval.RequiresEngineerApproval,
		ResolvedBy:               ptr(b.Approval.ResolvedBy),
		ResolvedAt:               utcPtr(b.Approval.ResolvedAt),
		ConversationID:           ptr(b.ConversationID),
		Notes:                    ptr(b.Notes),
		CreatedAt:                b.CreatedAt,
		UpdatedAt:                b.UpdatedAt,
	}
	if b.Pricing != nil {
		rate, total := b.Pricing.HourlyRate, b.Pricing.Total
		m.HourlyRate, m.TotalPrice, m.Currency = &rate, &total, ptr(b.Pricing.Currency)
	}
	return m
}

var participantColumns = map[domain.ParticipantRole]string{
	domain.ParticipantArtist:   "artist_id",
	domain.ParticipantStudio:   "studio_id",
	domain.ParticipantEngineer: "engineer_id",
}

// FetchBookings lists bookings where participantID appears under role, newest first.
func (r *BookingRepository) FetchBookings(ctx context.Context, participantID string, role domain.ParticipantRole) ([]domain.Booking, error) {
	column, ok := participantColumns[role]
	if !ok {
		return nil, fmt.Errorf("fetch bookings: unknown role %q", role)
	}
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where(column+" = ?", participantID).
		Order("requested_start DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) LoadBooking(ctx context.Context, id string) (*domain.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	b := toDomainBooking(m)
	return &b, nil
}

// CreateBooking inserts b unless a committed live booking already holds the same room or
// engineer for an overlapping window. Row locks cover existing rows only. On postgres the
// exclusion constraint also stops concurrent room overlaps; concurrent engineer overlaps
// rely on callers holding the booking locks.
func (r *BookingRepository) CreateBooking(ctx context.Context, b *domain.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var live []bookingModel
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status IN ?", liveStatuses())
		if b.EngineerID != "" {
			q = q.Where("((studio_id = ? AND room_id = ?) OR engineer_id = ?)", b.StudioID, b.RoomID, b.EngineerID)
		} else {
			q = q.Where("studio_id = ? AND room_id = ?", b.StudioID, b.RoomID)
		}
		if err := q.Find(&live).Error; err != nil {
			return err
		}

		start, end := b.EffectiveWindow()
		for _, m := range live {
			existing := toDomainBooking(m)
			if existing.ID != b.ID && existing.OverlapsWindow(start, end) {
				return domain.ErrBookingConflict
			}
		}

		m := toBookingModel(*b)
		return tx.Create(&m).Error
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrBookingConflict) || isConflictError(err) {
		return fmt.Errorf("create booking %s: %w", b.ID, domain.ErrBookingConflict)
	}
	return fmt.Errorf("create booking: %w", err)
}

// UpdateBooking writes every column of b, inserting it when missing.
func (r *BookingRepository) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(*b)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
	if err == nil {
		return nil
	}
	if isConflictError(err) {
		return fmt.Errorf("update booking %s: %w", b.ID, domain.ErrBookingConflict)
	}
	return fmt.Errorf("update booking: %w", err)
}

func liveStatuses() []string {
	out := make([]string, 0, len(domain.LiveBookingStatuses))
	for _, s := range domain.LiveBookingStatuses {
		out = append(out, string(s))
	}
	return out
}

// isConflictError recognises unique and exclusion violations across drivers.
func isConflictError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" || pgErr.Code == "23P01"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
