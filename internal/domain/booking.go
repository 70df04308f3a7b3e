package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingRefunded  BookingStatus = "refunded"
)

// Terminal reports whether no further status transitions are accepted.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted || s == BookingRefunded
}

// Booking ties a user to a package for one date. Quantity and price are fixed
// at creation; only status and guest metadata change afterward.
type Booking struct {
	ID                 int64         `json:"id"`
	Reference          string        `json:"reference"`
	UserID             int64         `json:"user_id"`
	PackageID          int64         `json:"package_id"`
	Status             BookingStatus `json:"status"`
	Quantity           int           `json:"quantity"`
	TotalPrice         float64       `json:"total_price"`
	Currency           string        `json:"currency"`
	BookingDate        time.Time     `json:"booking_date"`
	GuestName          string        `json:"guest_name,omitempty"`
	GuestEmail         string        `json:"guest_email,omitempty"`
	GuestPhone         string        `json:"guest_phone,omitempty"`
	SpecialRequests    string        `json:"special_requests,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
}
