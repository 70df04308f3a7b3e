package domain

import "time"

type PaymentRecordStatus string

const (
	PaymentCreated  PaymentRecordStatus = "created"
	PaymentPending  PaymentRecordStatus = "pending"
	PaymentPaid     PaymentRecordStatus = "paid"
	PaymentFailed   PaymentRecordStatus = "failed"
	PaymentRefunded PaymentRecordStatus = "refunded"
)

// PaymentRecord tracks one provider charge attempt for a booking. The provider
// confirms out-of-band via webhook; RawBody keeps the last payload for audit.
type PaymentRecord struct {
	ID        int64               `json:"id"`
	Reference string              `json:"reference"`
	BookingID int64               `json:"booking_id"`
	Provider  string              `json:"provider"`
	Amount    float64             `json:"amount"`
	Currency  string              `json:"currency"`
	Status    PaymentRecordStatus `json:"status"`
	RawBody   string              `json:"-"`
	PaidAt    *time.Time          `json:"paid_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
