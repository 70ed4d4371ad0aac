package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// bookingExclusion keeps two live bookings from holding the same room at once.
// Postgres only; other dialects rely on the transactional check in CreateBooking.
const bookingExclusion = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_room_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_room_no_overlap
		EXCLUDE USING gist (
			studio_id WITH =,
			room_id WITH =,
			tstzrange(COALESCE(confirmed_start, requested_start), COALESCE(confirmed_end, requested_end), '[)') WITH &&
		) WHERE (status IN ('pending', 'confirmed', 'rescheduled'));
	END IF;
END $$;`

// Migrate creates or updates every table the stores use.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&studioModel{},
		&roomModel{},
		&profileModel{},
		&availabilityModel{},
		&bookingModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}
	if err := db.Exec(bookingExclusion).Error; err != nil {
		return fmt.Errorf("booking exclusion constraint: %w", err)
	}
	return nil
}
