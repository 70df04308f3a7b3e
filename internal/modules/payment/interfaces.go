package payment

import (
	"context"
	"time"

	"tripmarket/internal/domain"
)

type paymentRepo interface {
	Create(ctx context.Context, p *domain.PaymentRecord) error
	GetByReference(ctx context.Context, ref string) (*domain.PaymentRecord, error)
	MarkPaidIdempotent(ctx context.Context, ref string, rawBody string, paidAt time.Time) (bool, error)
}

type bookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatusWithRestore(ctx context.Context, id int64, from, to domain.BookingStatus, reason string) (*domain.Booking, error)
}

type confirmationNotifier interface {
	NotifyBookingConfirmed(ctx context.Context, travelerUserID, bookingID, packageID int64) error
}
