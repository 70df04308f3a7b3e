package repository

import (
	"context"
	"errors"
	"time"

	"tripmarket/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	Reference          string     `gorm:"column:reference;uniqueIndex"`
	UserID             int64      `gorm:"column:user_id;index"`
	PackageID          int64      `gorm:"column:package_id;index"`
	Status             string     `gorm:"column:status"`
	Quantity           int        `gorm:"column:quantity"`
	TotalPrice         float64    `gorm:"column:total_price"`
	Currency           string     `gorm:"column:currency"`
	BookingDate        time.Time  `gorm:"column:booking_date"`
	OccupancyKey       *int64     `gorm:"column:occupancy_key"`
	GuestName          *string    `gorm:"column:guest_name"`
	GuestEmail         *string    `gorm:"column:guest_email"`
	GuestPhone         *string    `gorm:"column:guest_phone"`
	SpecialRequests    *string    `gorm:"column:special_requests"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                 m.ID,
		Reference:          m.Reference,
		UserID:             m.UserID,
		PackageID:          m.PackageID,
		Status:             domain.BookingStatus(m.Status),
		Quantity:           m.Quantity,
		TotalPrice:         m.TotalPrice,
		Currency:           m.Currency,
		BookingDate:        m.BookingDate,
		GuestName:          strOrEmpty(m.GuestName),
		GuestEmail:         strOrEmpty(m.GuestEmail),
		GuestPhone:         strOrEmpty(m.GuestPhone),
		SpecialRequests:    strOrEmpty(m.SpecialRequests),
		CancellationReason: strOrEmpty(m.CancellationReason),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		CancelledAt:        m.CancelledAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                 b.ID,
		Reference:          b.Reference,
		UserID:             b.UserID,
		PackageID:          b.PackageID,
		Status:             string(b.Status),
		Quantity:           b.Quantity,
		TotalPrice:         b.TotalPrice,
		Currency:           b.Currency,
		BookingDate:        b.BookingDate,
		GuestName:          strOrNil(b.GuestName),
		GuestEmail:         strOrNil(b.GuestEmail),
		GuestPhone:         strOrNil(b.GuestPhone),
		SpecialRequests:    strOrNil(b.SpecialRequests),
		CancellationReason: strOrNil(b.CancellationReason),
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		CancelledAt:        b.CancelledAt,
	}
}

// Create inserts the booking and takes its slots in one transaction. The
// admission decision is made here, against the store, not by any earlier
// advisory availability check: for slot-based packages the guarded UPDATE is
// the authority, for single-occupancy packages the active-booking count plus
// the partial unique index on (package_id, booking_date) is.
//
// Either the booking row and the slot decrement both commit, or neither does.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p packageModel
		if err := tx.First(&p, b.PackageID).Error; err != nil {
			return err
		}
		if p.Status != string(domain.PackagePublished) {
			return ErrPackageUnavailable
		}

		if p.AvailableSlots != nil {
			ok, err := decrementSlots(tx, b.PackageID, b.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientSlots
			}
		} else {
			var cnt int64
			err := tx.Raw(`
SELECT COUNT(1) FROM bookings
WHERE package_id = ? AND booking_date = ? AND status IN ('pending', 'confirmed')`,
				b.PackageID, b.BookingDate).Scan(&cnt).Error
			if err != nil {
				return err
			}
			if cnt > 0 {
				return ErrDateTaken
			}
		}

		m := toBookingModel(b)
		if p.AvailableSlots == nil {
			// Single-occupancy bookings carry the package id in occupancy_key
			// so the partial unique index rejects a concurrent double-book;
			// slot-based bookings leave it NULL and never collide.
			m.OccupancyKey = &b.PackageID
		}
		if err := tx.Create(&m).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_one_active_per_date" {
				return ErrDateTaken
			}
			return err
		}
		*b = *toDomainBooking(m)
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByReference(ctx context.Context, ref string) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).Where("reference = ?", ref).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// UpdateStatusWithRestore moves the booking from an expected prior status to a
// new one and, for pending/confirmed -> cancelled on a slot-based package,
// returns the booking's quantity to the package in the same transaction.
//
// The guard lives in the UPDATE itself, not in the earlier read: the status
// predicate makes exactly one of two concurrent transitions match the row, the
// loser sees zero rows and fails with ErrStatusConflict before touching the
// package. That is what makes cancellation restore slots at most once.
func (r *BookingRepository) UpdateStatusWithRestore(ctx context.Context, id int64, from, to domain.BookingStatus, reason string) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m bookingModel
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		if m.Status != string(from) {
			return ErrStatusConflict
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":     string(to),
			"updated_at": now,
		}
		if to == domain.BookingCancelled {
			updates["cancelled_at"] = now
			updates["cancellation_reason"] = strOrNil(reason)
		}

		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status = ?", id, string(from)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another transaction committed a transition between our read and
			// this write.
			return ErrStatusConflict
		}

		m.Status = string(to)
		m.UpdatedAt = now
		if to == domain.BookingCancelled {
			m.CancelledAt = &now
			m.CancellationReason = strOrNil(reason)
		}

		restores := to == domain.BookingCancelled &&
			(from == domain.BookingPending || from == domain.BookingConfirmed)
		if restores {
			if err := restoreSlots(tx, m.PackageID, m.Quantity); err != nil {
				return err
			}
		}

		out = toDomainBooking(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SumQuantityForDate totals active booking quantities for one package and day.
// The packages.available_slots counter is denormalized; this is the derived
// side of that aggregate, used to audit the two stay consistent.
func (r *BookingRepository) SumQuantityForDate(ctx context.Context, packageID int64, date time.Time, statuses []domain.BookingStatus) (int, error) {
	ss := make([]string, 0, len(statuses))
	for _, s := range statuses {
		ss = append(ss, string(s))
	}

	var total int
	err := r.db.WithContext(ctx).Raw(`
SELECT COALESCE(SUM(quantity), 0) FROM bookings
WHERE package_id = ? AND booking_date = ? AND status IN ?`,
		packageID, date, ss).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// HasActiveForDate reports whether any pending or confirmed booking exists for
// the package on the given date.
func (r *BookingRepository) HasActiveForDate(ctx context.Context, packageID int64, date time.Time) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Raw(`
SELECT COUNT(1) FROM bookings
WHERE package_id = ? AND booking_date = ? AND status IN ('pending', 'confirmed')`,
		packageID, date).Scan(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// UserBookingDetails is the row shape for a user's booking list, joined with
// package info.
type UserBookingDetails struct {
	ID           int64     `gorm:"column:id"`
	Reference    string    `gorm:"column:reference"`
	Status       string    `gorm:"column:status"`
	Quantity     int       `gorm:"column:quantity"`
	TotalPrice   float64   `gorm:"column:total_price"`
	Currency     string    `gorm:"column:currency"`
	BookingDate  time.Time `gorm:"column:booking_date"`
	PackageID    int64     `gorm:"column:package_id"`
	PackageTitle string    `gorm:"column:package_title"`
	Destination  string    `gorm:"column:destination"`
}

func (r *BookingRepository) GetUserBookingsWithDetails(ctx context.Context, userID int64, limit, offset int) ([]UserBookingDetails, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []UserBookingDetails
	err := r.db.WithContext(ctx).Raw(`
SELECT b.id, b.reference, b.status, b.quantity, b.total_price, b.currency,
       b.booking_date, b.package_id, p.title AS package_title,
       COALESCE(p.destination, '') AS destination
FROM bookings b
JOIN packages p ON p.id = b.package_id
WHERE b.user_id = ?
ORDER BY b.created_at DESC
LIMIT ? OFFSET ?`,
		userID, limit, offset).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepository) GetByPackageID(ctx context.Context, packageID int64) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).Where("package_id = ?", packageID).Order("booking_date").Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
