package domain

import "time"

type PackageStatus string

const (
	PackageDraft     PackageStatus = "draft"
	PackagePublished PackageStatus = "published"
	PackageSoldOut   PackageStatus = "sold_out"
	PackageArchived  PackageStatus = "archived"
)

// TravelPackage is a sellable listing. Capacity and AvailableSlots are nil for
// listings that are not slot-based (stays, rentals): those use single-occupancy
// semantics, at most one active booking per date.
//
// Invariant: 0 <= AvailableSlots <= Capacity whenever both are non-nil.
// AvailableSlots is mutated only by the booking engine: decremented on create,
// restored on cancellation.
type TravelPackage struct {
	ID             int64         `json:"id"`
	VendorID       int64         `json:"vendor_id"`
	Title          string        `json:"title" validate:"required"`
	Description    string        `json:"description,omitempty"`
	Destination    string        `json:"destination,omitempty"`
	Price          float64       `json:"price" validate:"gte=0"`
	Currency       string        `json:"currency"`
	Status         PackageStatus `json:"status"`
	Capacity       *int          `json:"capacity,omitempty"`
	AvailableSlots *int          `json:"available_slots,omitempty"`
	StartDate      *time.Time    `json:"start_date,omitempty"`
	EndDate        *time.Time    `json:"end_date,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// SlotBased reports whether remaining capacity is tracked as a counter.
func (p *TravelPackage) SlotBased() bool {
	return p.AvailableSlots != nil
}
