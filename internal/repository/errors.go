package repository

import "errors"

var (
	// ErrPackageUnavailable means the package is not published (draft, sold out
	// or archived) at the moment of the write.
	ErrPackageUnavailable = errors.New("package not available for booking")

	// ErrInsufficientSlots means the CAS decrement matched no row: the package
	// ran out of slots between the caller's check and the write.
	ErrInsufficientSlots = errors.New("insufficient available slots")

	// ErrDateTaken means a non-slot-based package already has an active booking
	// for the requested date.
	ErrDateTaken = errors.New("package already booked for this date")

	// ErrStatusConflict means the booking's status changed under us and the
	// requested transition no longer applies.
	ErrStatusConflict = errors.New("booking status changed concurrently")
)
