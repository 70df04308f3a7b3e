package catalog

import (
	"context"
	"errors"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/repository"

	"gorm.io/gorm"
)

// PackageRepository is the full package store surface used by vendor tooling.
// Update covers listing fields only; AdjustCapacity is the single entry point
// for capacity (and thus slot) changes.
type PackageRepository interface {
	Create(ctx context.Context, p *domain.TravelPackage) error
	GetByID(ctx context.Context, id int64) (*domain.TravelPackage, error)
	Update(ctx context.Context, p *domain.TravelPackage) error
	AdjustCapacity(ctx context.Context, id int64, capacity int) error
	List(ctx context.Context, f repository.PackageFilter) ([]domain.TravelPackage, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
	SetStatus(ctx context.Context, id int64, status domain.PackageStatus) error
}

type Service struct {
	packages PackageRepository
}

func NewService(packages PackageRepository) *Service {
	return &Service{packages: packages}
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, ErrValidation
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &t, nil
}

// CreatePackage creates a draft listing for the vendor. A non-nil capacity
// makes the package slot-based and seeds available_slots with the full
// capacity; from then on only the booking engine mutates the counter.
func (s *Service) CreatePackage(ctx context.Context, vendorID int64, req CreatePackageRequest) (*domain.TravelPackage, error) {
	if req.Price < 0 {
		return nil, ErrValidation
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		return nil, ErrValidation
	}

	start, err := parseDay(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDay(req.EndDate)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, ErrValidation
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	p := &domain.TravelPackage{
		VendorID:    vendorID,
		Title:       req.Title,
		Description: req.Description,
		Destination: req.Destination,
		Price:       req.Price,
		Currency:    currency,
		Status:      domain.PackageDraft,
		Capacity:    req.Capacity,
		StartDate:   start,
		EndDate:     end,
	}
	if req.Capacity != nil {
		slots := *req.Capacity
		p.AvailableSlots = &slots
	}

	if err := s.packages.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) getOwned(ctx context.Context, id, vendorID int64, role domain.UserRole) (*domain.TravelPackage, error) {
	p, err := s.packages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if role != domain.RoleAdmin && p.VendorID != vendorID {
		return nil, ErrForbidden
	}
	return p, nil
}

// UpdatePackage edits listing fields; a capacity change additionally shifts
// available_slots by the delta, atomically in the store, so a booking that
// commits mid-edit is never erased.
func (s *Service) UpdatePackage(ctx context.Context, id, vendorID int64, role domain.UserRole, req UpdatePackageRequest) (*domain.TravelPackage, error) {
	p, err := s.getOwned(ctx, id, vendorID, role)
	if err != nil {
		return nil, err
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		return nil, ErrValidation
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Destination != nil {
		p.Destination = *req.Destination
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrValidation
		}
		p.Price = *req.Price
	}
	if req.StartDate != nil {
		start, err := parseDay(*req.StartDate)
		if err != nil {
			return nil, err
		}
		p.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseDay(*req.EndDate)
		if err != nil {
			return nil, err
		}
		p.EndDate = end
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return nil, ErrValidation
	}

	if err := s.packages.Update(ctx, p); err != nil {
		return nil, err
	}

	if req.Capacity != nil {
		if err := s.packages.AdjustCapacity(ctx, id, *req.Capacity); err != nil {
			return nil, err
		}
	}

	return s.packages.GetByID(ctx, id)
}

func (s *Service) Publish(ctx context.Context, id, vendorID int64, role domain.UserRole) error {
	p, err := s.getOwned(ctx, id, vendorID, role)
	if err != nil {
		return err
	}
	if p.Status != domain.PackageDraft && p.Status != domain.PackageArchived {
		return ErrValidation
	}
	return s.packages.SetStatus(ctx, id, domain.PackagePublished)
}

func (s *Service) Archive(ctx context.Context, id, vendorID int64, role domain.UserRole) error {
	if _, err := s.getOwned(ctx, id, vendorID, role); err != nil {
		return err
	}
	return s.packages.SetStatus(ctx, id, domain.PackageArchived)
}

func (s *Service) GetPackage(ctx context.Context, id int64) (*domain.TravelPackage, error) {
	p, err := s.packages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListPublished is the public search: published packages filtered by
// destination substring and free-text query.
func (s *Service) ListPublished(ctx context.Context, q ListPackagesQuery) ([]domain.TravelPackage, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.packages.List(ctx, repository.PackageFilter{
		Status:      string(domain.PackagePublished),
		Destination: q.Destination,
		Query:       q.Query,
		Limit:       limit,
		Offset:      q.Offset,
	})
}

func (s *Service) ListMine(ctx context.Context, vendorID int64) ([]domain.TravelPackage, error) {
	return s.packages.List(ctx, repository.PackageFilter{VendorID: vendorID, Limit: 100})
}

func (s *Service) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if prefix == "" {
		return []string{}, nil
	}
	return s.packages.Suggest(ctx, prefix, limit)
}
