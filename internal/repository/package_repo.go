package repository

import (
	"context"
	"strings"
	"time"

	"tripmarket/internal/domain"

	"gorm.io/gorm"
)

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

type packageModel struct {
	ID             int64      `gorm:"column:id;primaryKey"`
	VendorID       int64      `gorm:"column:vendor_id;index"`
	Title          string     `gorm:"column:title"`
	Description    *string    `gorm:"column:description"`
	Destination    *string    `gorm:"column:destination"`
	Price          float64    `gorm:"column:price"`
	Currency       string     `gorm:"column:currency"`
	Status         string     `gorm:"column:status;index"`
	Capacity       *int       `gorm:"column:capacity"`
	AvailableSlots *int       `gorm:"column:available_slots"`
	StartDate      *time.Time `gorm:"column:start_date"`
	EndDate        *time.Time `gorm:"column:end_date"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (packageModel) TableName() string { return "packages" }

func toDomainPackage(m packageModel) *domain.TravelPackage {
	var description, destination string
	if m.Description != nil {
		description = *m.Description
	}
	if m.Destination != nil {
		destination = *m.Destination
	}

	return &domain.TravelPackage{
		ID:             m.ID,
		VendorID:       m.VendorID,
		Title:          m.Title,
		Description:    description,
		Destination:    destination,
		Price:          m.Price,
		Currency:       m.Currency,
		Status:         domain.PackageStatus(m.Status),
		Capacity:       m.Capacity,
		AvailableSlots: m.AvailableSlots,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toPackageModel(p *domain.TravelPackage) packageModel {
	var description, destination *string
	if p.Description != "" {
		v := p.Description
		description = &v
	}
	if p.Destination != "" {
		v := p.Destination
		destination = &v
	}

	return packageModel{
		ID:             p.ID,
		VendorID:       p.VendorID,
		Title:          p.Title,
		Description:    description,
		Destination:    destination,
		Price:          p.Price,
		Currency:       p.Currency,
		Status:         string(p.Status),
		Capacity:       p.Capacity,
		AvailableSlots: p.AvailableSlots,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r *PackageRepository) Create(ctx context.Context, p *domain.TravelPackage) error {
	m := toPackageModel(p)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainPackage(m)
	return nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*domain.TravelPackage, error) {
	var m packageModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainPackage(m), nil
}

// Update writes listing fields only. capacity, available_slots and status are
// deliberately absent: they belong to the booking engine and AdjustCapacity,
// and a stale snapshot carried through an edit form must not be able to
// clobber a booking that committed in the meantime.
func (r *PackageRepository) Update(ctx context.Context, p *domain.TravelPackage) error {
	return r.db.WithContext(ctx).Model(&packageModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"title":       p.Title,
			"description": strOrNil(p.Description),
			"destination": strOrNil(p.Destination),
			"price":       p.Price,
			"currency":    p.Currency,
			"start_date":  p.StartDate,
			"end_date":    p.EndDate,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// AdjustCapacity sets a new capacity and shifts available_slots by the same
// delta in one statement, clamped at zero, so already-sold units stay accounted
// for whatever commits concurrently. First-time capacity seeds the counter with
// the full amount; growing a sold_out package reopens it.
func (r *PackageRepository) AdjustCapacity(ctx context.Context, id int64, capacity int) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE packages
SET available_slots = CASE
        WHEN capacity IS NULL THEN ?
        WHEN available_slots + ? - capacity < 0 THEN 0
        ELSE available_slots + ? - capacity
    END,
    status = CASE
        WHEN status = 'sold_out' AND ? > capacity THEN 'published'
        ELSE status
    END,
    capacity = ?,
    updated_at = ?
WHERE id = ?`,
		capacity, capacity, capacity, capacity, capacity, time.Now().UTC(), id).Error
}

type PackageFilter struct {
	Destination string
	Query       string
	Status      string
	VendorID    int64
	Limit       int
	Offset      int
}

func (r *PackageRepository) List(ctx context.Context, f PackageFilter) ([]domain.TravelPackage, error) {
	q := r.db.WithContext(ctx).Model(&packageModel{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.VendorID != 0 {
		q = q.Where("vendor_id = ?", f.VendorID)
	}
	if f.Destination != "" {
		q = q.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(f.Destination)+"%")
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []packageModel
	if err := q.Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.TravelPackage, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainPackage(m))
	}
	return out, nil
}

// Suggest returns published package titles with the given prefix.
func (r *PackageRepository) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 || limit > 20 {
		limit = 10
	}

	var titles []string
	tx := r.db.WithContext(ctx).Model(&packageModel{}).
		Where("status = ?", string(domain.PackagePublished)).
		Where("LOWER(title) LIKE ?", strings.ToLower(prefix)+"%").
		Order("title").
		Limit(limit).
		Pluck("title", &titles)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return titles, nil
}

func (r *PackageRepository) SetStatus(ctx context.Context, id int64, status domain.PackageStatus) error {
	return r.db.WithContext(ctx).Model(&packageModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": string(status), "updated_at": time.Now().UTC()}).Error
}

// decrementSlots atomically takes quantity slots from the package. The guard
// in the WHERE clause is what rejects the loser of a race for the last slot:
// the statement matches no row and the caller sees false. It runs on whatever
// handle it is given so booking transactions share the statement.
func decrementSlots(tx *gorm.DB, id int64, quantity int) (bool, error) {
	res := tx.Exec(`
UPDATE packages
SET available_slots = available_slots - ?,
    status = CASE WHEN available_slots - ? = 0 THEN 'sold_out' ELSE status END,
    updated_at = ?
WHERE id = ? AND available_slots IS NOT NULL AND available_slots >= ?`,
		quantity, quantity, time.Now().UTC(), id, quantity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// restoreSlots returns quantity slots to the package, clamped at capacity, and
// reopens a sold_out package. Counterpart of decrementSlots, run inside the
// cancellation transaction.
func restoreSlots(tx *gorm.DB, id int64, quantity int) error {
	return tx.Exec(`
UPDATE packages
SET available_slots = CASE
        WHEN capacity IS NOT NULL AND available_slots + ? > capacity THEN capacity
        ELSE available_slots + ?
    END,
    status = CASE WHEN status = 'sold_out' THEN 'published' ELSE status END,
    updated_at = ?
WHERE id = ? AND available_slots IS NOT NULL`,
		quantity, quantity, time.Now().UTC(), id).Error
}
