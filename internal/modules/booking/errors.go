package booking

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
	ErrSelfBooking             = errors.New("vendors cannot book their own packages")
	ErrNotAvailable            = errors.New("package not available for booking")
	ErrInsufficientSlots       = errors.New("not enough slots remaining")
	ErrAlreadyBooked           = errors.New("package already booked for this date")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrStatusConflict          = errors.New("booking status changed concurrently")
)
