package booking

import "tripmarket/internal/domain"

type CreateBookingRequest struct {
	PackageID       int64  `json:"package_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required"`
	BookingDate     string `json:"booking_date" binding:"required"` // YYYY-MM-DD
	GuestName       string `json:"guest_name"`
	GuestEmail      string `json:"guest_email"`
	GuestPhone      string `json:"guest_phone"`
	SpecialRequests string `json:"special_requests"`

	// Set from the authenticated context, never from the body.
	UserID int64 `json:"-"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// Actor identifies who is asking for a transition.
type Actor struct {
	UserID int64
	Role   domain.UserRole
}

// Availability is the advisory answer to "can I book N units on this date".
// RemainingSlots is nil for packages that are not slot-based.
type Availability struct {
	Available      bool   `json:"available"`
	RemainingSlots *int   `json:"remaining_slots,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

type CalendarDay struct {
	Date           string  `json:"date"`
	Available      bool    `json:"available"`
	RemainingSlots *int    `json:"remaining_slots,omitempty"`
	Price          float64 `json:"price"`
	IsBlocked      bool    `json:"is_blocked"`
}
