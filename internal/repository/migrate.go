package repository

import "gorm.io/gorm"

// Migrate creates the schema for every repository in this package. The partial
// unique index is the database-side guard for single-occupancy packages: at
// most one active booking per package and date, whatever the application does.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel{},
		&packageModel{},
		&bookingModel{},
		&paymentModel{},
	); err != nil {
		return err
	}

	return db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_per_date
ON bookings (occupancy_key, booking_date)
WHERE status IN ('pending', 'confirmed') AND occupancy_key IS NOT NULL`).Error
}
