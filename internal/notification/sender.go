package notification

import (
	"context"
	"time"
)

// Event type constants
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
)

type Event struct {
	Type        string    `json:"type"`
	BookingID   int64     `json:"booking_id"`
	PackageID   int64     `json:"package_id"`
	BookingDate time.Time `json:"booking_date,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

// Sender pushes booking lifecycle events over the websocket hub. It satisfies
// the booking module's NotificationSender.
type Sender struct {
	hub *Hub
}

func NewSender(hub *Hub) *Sender {
	return &Sender{hub: hub}
}

func (s *Sender) NotifyBookingCreated(ctx context.Context, vendorUserID, bookingID, packageID int64, date time.Time) error {
	s.hub.SendToUser(vendorUserID, Event{
		Type:        TypeBookingCreated,
		BookingID:   bookingID,
		PackageID:   packageID,
		BookingDate: date,
		SentAt:      time.Now().UTC(),
	})
	return nil
}

func (s *Sender) NotifyBookingConfirmed(ctx context.Context, travelerUserID, bookingID, packageID int64) error {
	s.hub.SendToUser(travelerUserID, Event{
		Type:      TypeBookingConfirmed,
		BookingID: bookingID,
		PackageID: packageID,
		SentAt:    time.Now().UTC(),
	})
	return nil
}

func (s *Sender) NotifyBookingCancelled(ctx context.Context, travelerUserID, bookingID, packageID int64, reason string) error {
	s.hub.SendToUser(travelerUserID, Event{
		Type:      TypeBookingCancelled,
		BookingID: bookingID,
		PackageID: packageID,
		Reason:    reason,
		SentAt:    time.Now().UTC(),
	})
	return nil
}
