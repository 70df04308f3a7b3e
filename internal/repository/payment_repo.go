package repository

import (
	"context"
	"time"

	"tripmarket/internal/domain"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type paymentModel struct {
	ID        int64      `gorm:"column:id;primaryKey"`
	Reference string     `gorm:"column:reference;uniqueIndex"`
	BookingID int64      `gorm:"column:booking_id;index"`
	Provider  string     `gorm:"column:provider"`
	Amount    float64    `gorm:"column:amount"`
	Currency  string     `gorm:"column:currency"`
	Status    string     `gorm:"column:status"`
	RawBody   *string    `gorm:"column:raw_body"`
	PaidAt    *time.Time `gorm:"column:paid_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (paymentModel) TableName() string { return "payments" }

func toDomainPayment(m paymentModel) *domain.PaymentRecord {
	return &domain.PaymentRecord{
		ID:        m.ID,
		Reference: m.Reference,
		BookingID: m.BookingID,
		Provider:  m.Provider,
		Amount:    m.Amount,
		Currency:  m.Currency,
		Status:    domain.PaymentRecordStatus(m.Status),
		RawBody:   strOrEmpty(m.RawBody),
		PaidAt:    m.PaidAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.PaymentRecord) error {
	m := paymentModel{
		Reference: p.Reference,
		BookingID: p.BookingID,
		Provider:  p.Provider,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    string(p.Status),
		RawBody:   strOrNil(p.RawBody),
		PaidAt:    p.PaidAt,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainPayment(m)
	return nil
}

func (r *PaymentRepository) GetByReference(ctx context.Context, ref string) (*domain.PaymentRecord, error) {
	var m paymentModel
	tx := r.db.WithContext(ctx).Where("reference = ?", ref).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainPayment(m), nil
}

// MarkPaidIdempotent flips the payment to paid and reports whether this call
// did the flip. Replayed webhooks see false and must not re-confirm anything.
func (r *PaymentRepository) MarkPaidIdempotent(ctx context.Context, ref string, rawBody string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&paymentModel{}).
		Where("reference = ? AND status <> ?", ref, string(domain.PaymentPaid)).
		Updates(map[string]interface{}{
			"status":     string(domain.PaymentPaid),
			"raw_body":   rawBody,
			"paid_at":    paidAt,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
