package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxQuantityPerBooking = 50
	maxCalendarDays       = 92
)

type Service struct {
	bookings BookingRepository
	packages PackageRepository
	notifs   NotificationSender
	calCache CalendarCache
}

func NewService(bookings BookingRepository, packages PackageRepository, notifs NotificationSender, calCache CalendarCache) *Service {
	return &Service{
		bookings: bookings,
		packages: packages,
		notifs:   notifs,
		calCache: calCache,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckAvailability answers whether quantity units can be booked on date. It
// is a pure read and only advisory: availability can change between this call
// and CreateBooking, which re-decides atomically against the store.
func (s *Service) CheckAvailability(ctx context.Context, packageID int64, date time.Time, quantity int) (*Availability, error) {
	if quantity < 1 || quantity > maxQuantityPerBooking {
		return nil, ErrValidation
	}

	p, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.availabilityFor(ctx, p, dateOnly(date), quantity)
}

// availabilityFor runs the decision sequence: published, date in range, then
// slot arithmetic or single-occupancy check. First failing check wins.
func (s *Service) availabilityFor(ctx context.Context, p *domain.TravelPackage, day time.Time, quantity int) (*Availability, error) {
	if p.Status != domain.PackagePublished && p.Status != domain.PackageSoldOut {
		return &Availability{Available: false, Reason: "not available for booking"}, nil
	}
	if !withinDateRange(p, day) {
		return &Availability{Available: false, Reason: "outside availability range"}, nil
	}

	if p.SlotBased() {
		remaining := *p.AvailableSlots
		if remaining < 0 {
			remaining = 0
		}
		if remaining == 0 {
			zero := 0
			return &Availability{Available: false, RemainingSlots: &zero, Reason: "sold out"}, nil
		}
		if quantity > remaining {
			return &Availability{
				Available:      false,
				RemainingSlots: &remaining,
				Reason:         fmt.Sprintf("only %d slots remaining", remaining),
			}, nil
		}
		return &Availability{Available: true, RemainingSlots: &remaining}, nil
	}

	taken, err := s.bookings.HasActiveForDate(ctx, p.ID, day)
	if err != nil {
		return nil, err
	}
	if taken {
		return &Availability{Available: false, Reason: "already booked for this date"}, nil
	}
	return &Availability{Available: true}, nil
}

// withinDateRange compares at day granularity, both bounds inclusive.
func withinDateRange(p *domain.TravelPackage, day time.Time) bool {
	if p.StartDate != nil && day.Before(dateOnly(*p.StartDate)) {
		return false
	}
	if p.EndDate != nil && day.After(dateOnly(*p.EndDate)) {
		return false
	}
	return true
}

// CreateBooking validates the request and hands the admission decision to the
// repository, where the slot decrement and the booking insert commit together.
// Nothing here trusts an earlier CheckAvailability call.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.Quantity < 1 || req.Quantity > maxQuantityPerBooking {
		return nil, ErrValidation
	}

	day, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return nil, ErrValidation
	}
	day = dateOnly(day)

	if day.Before(dateOnly(time.Now().UTC())) {
		return nil, ErrValidation
	}

	p, err := s.packages.GetByID(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.VendorID == req.UserID {
		return nil, ErrSelfBooking
	}
	if p.Status != domain.PackagePublished {
		return nil, ErrNotAvailable
	}
	if !withinDateRange(p, day) {
		return nil, ErrValidation
	}

	total := p.Price * float64(req.Quantity)
	total = math.Round(total*100) / 100

	b := &domain.Booking{
		Reference:       uuid.NewString(),
		UserID:          req.UserID,
		PackageID:       req.PackageID,
		Status:          domain.BookingPending,
		Quantity:        req.Quantity,
		TotalPrice:      total,
		Currency:        p.Currency,
		BookingDate:     day,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		SpecialRequests: req.SpecialRequests,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrPackageUnavailable):
			return nil, ErrNotAvailable
		case errors.Is(err, repository.ErrInsufficientSlots):
			return nil, ErrInsufficientSlots
		case errors.Is(err, repository.ErrDateTaken):
			return nil, ErrAlreadyBooked
		default:
			return nil, err
		}
	}

	// Post-commit, best-effort.
	if s.calCache != nil {
		s.calCache.InvalidatePackage(ctx, p.ID)
	}
	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCreated(ctx, p.VendorID, b.ID, p.ID, b.BookingDate)
	}

	return b, nil
}

// legalTransitions is the booking state machine. Cancelled, completed and
// refunded are terminal.
var legalTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingConfirmed: {domain.BookingCancelled, domain.BookingCompleted, domain.BookingRefunded},
}

func transitionAllowed(from, to domain.BookingStatus) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// UpdateBookingStatus applies one state machine transition on behalf of actor.
// Role rules: the booking's owner may only cancel, the package's vendor may
// confirm, cancel or complete, admins may perform any legal transition
// (refunds are admin-only). Slot restoration on cancellation happens inside
// the repository transaction and at most once.
func (s *Service) UpdateBookingStatus(ctx context.Context, bookingID int64, actor Actor, newStatus domain.BookingStatus, reason string) (*domain.Booking, error) {
	switch newStatus {
	case domain.BookingConfirmed, domain.BookingCancelled, domain.BookingCompleted, domain.BookingRefunded:
	default:
		return nil, ErrValidation
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !transitionAllowed(b.Status, newStatus) {
		return nil, ErrInvalidStatusTransition
	}

	p, err := s.packages.GetByID(ctx, b.PackageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch {
	case actor.Role == domain.RoleAdmin:
		// unrestricted among legal transitions
	case actor.UserID == p.VendorID && actor.Role == domain.RoleVendor:
		if newStatus == domain.BookingRefunded {
			return nil, ErrForbidden
		}
	case actor.UserID == b.UserID:
		if newStatus != domain.BookingCancelled {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	updated, err := s.bookings.UpdateStatusWithRestore(ctx, b.ID, b.Status, newStatus, reason)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrStatusConflict
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.calCache != nil {
		s.calCache.InvalidatePackage(ctx, p.ID)
	}
	if s.notifs != nil {
		switch newStatus {
		case domain.BookingConfirmed:
			_ = s.notifs.NotifyBookingConfirmed(ctx, updated.UserID, updated.ID, p.ID)
		case domain.BookingCancelled:
			_ = s.notifs.NotifyBookingCancelled(ctx, updated.UserID, updated.ID, p.ID, reason)
		}
	}

	return updated, nil
}

// GetCalendar projects availability over a date range, one entry per day.
// Cached with a short TTL; the cache is never part of an admission decision.
func (s *Service) GetCalendar(ctx context.Context, packageID int64, from, to time.Time) ([]CalendarDay, error) {
	from, to = dateOnly(from), dateOnly(to)
	if to.Before(from) || int(to.Sub(from).Hours()/24) > maxCalendarDays {
		return nil, ErrValidation
	}

	if s.calCache != nil {
		var cached []CalendarDay
		if s.calCache.Get(ctx, packageID, from, to, &cached) {
			return cached, nil
		}
	}

	p, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	days := make([]CalendarDay, 0)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		av, err := s.availabilityFor(ctx, p, day, 1)
		if err != nil {
			return nil, err
		}
		days = append(days, CalendarDay{
			Date:           day.Format("2006-01-02"),
			Available:      av.Available,
			RemainingSlots: av.RemainingSlots,
			Price:          p.Price,
			IsBlocked:      !withinDateRange(p, day) || p.Status == domain.PackageArchived || p.Status == domain.PackageDraft,
		})
	}

	if s.calCache != nil {
		s.calCache.Set(ctx, packageID, from, to, days)
	}
	return days, nil
}

func (s *Service) GetByID(ctx context.Context, bookingID int64, actor Actor) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if actor.Role == domain.RoleAdmin || actor.UserID == b.UserID {
		return b, nil
	}

	p, err := s.packages.GetByID(ctx, b.PackageID)
	if err != nil {
		return nil, err
	}
	if actor.UserID == p.VendorID {
		return b, nil
	}
	return nil, ErrForbidden
}

func (s *Service) GetMyBookings(ctx context.Context, userID int64, limit, offset int) ([]repository.UserBookingDetails, error) {
	return s.bookings.GetUserBookingsWithDetails(ctx, userID, limit, offset)
}

// GetBookingsByPackage lists a package's bookings for its vendor (or admin).
func (s *Service) GetBookingsByPackage(ctx context.Context, packageID int64, actor Actor) ([]domain.Booking, error) {
	p, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && actor.UserID != p.VendorID {
		return nil, ErrForbidden
	}
	return s.bookings.GetByPackageID(ctx, packageID)
}
