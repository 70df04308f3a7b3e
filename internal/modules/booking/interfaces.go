package booking

import (
	"context"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/repository"
)

// PackageRepository is the read side of the package store used by the engine.
type PackageRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TravelPackage, error)
}

// BookingRepository is the booking store. Create and UpdateStatusWithRestore
// are transactional: slot accounting happens inside them, never here.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatusWithRestore(ctx context.Context, id int64, from, to domain.BookingStatus, reason string) (*domain.Booking, error)
	HasActiveForDate(ctx context.Context, packageID int64, date time.Time) (bool, error)
	GetUserBookingsWithDetails(ctx context.Context, userID int64, limit, offset int) ([]repository.UserBookingDetails, error)
	GetByPackageID(ctx context.Context, packageID int64) ([]domain.Booking, error)
}

// NotificationSender pushes booking lifecycle events. All calls are
// best-effort; failures never roll anything back.
type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, vendorUserID, bookingID, packageID int64, date time.Time) error
	NotifyBookingConfirmed(ctx context.Context, travelerUserID, bookingID, packageID int64) error
	NotifyBookingCancelled(ctx context.Context, travelerUserID, bookingID, packageID int64, reason string) error
}

// CalendarCache caches computed calendars. Advisory only.
type CalendarCache interface {
	Get(ctx context.Context, packageID int64, from, to time.Time, dest interface{}) bool
	Set(ctx context.Context, packageID int64, from, to time.Time, value interface{})
	InvalidatePackage(ctx context.Context, packageID int64)
}
