package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAmountMismatch   = errors.New("amount mismatch")
	ErrNotPayable       = errors.New("booking is not awaiting payment")
)

const providerName = "paystack"

type Service struct {
	payments paymentRepo
	bookings bookingStore
	notifs   confirmationNotifier
	secret   []byte
	loggerf  func(format string, args ...interface{})
}

func NewService(payments paymentRepo, bookings bookingStore, notifs confirmationNotifier, secret string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		payments: payments,
		bookings: bookings,
		notifs:   notifs,
		secret:   []byte(secret),
		loggerf:  loggerf,
	}
}

// InitPayment opens a charge for a pending booking owned by userID. The
// returned reference is what the provider will echo back in the webhook.
func (s *Service) InitPayment(ctx context.Context, userID int64, req InitPaymentRequest) (*InitPaymentResponse, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingPending {
		return nil, ErrNotPayable
	}

	p := &domain.PaymentRecord{
		Reference: uuid.NewString(),
		BookingID: b.ID,
		Provider:  providerName,
		Amount:    b.TotalPrice,
		Currency:  b.Currency,
		Status:    domain.PaymentCreated,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	return &InitPaymentResponse{
		Reference: p.Reference,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    string(p.Status),
	}, nil
}

// VerifySignature checks the provider's HMAC-SHA512 hex signature over the raw
// webhook body.
func (s *Service) VerifySignature(signature string, body []byte) bool {
	mac := hmac.New(sha512.New, s.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandleWebhook processes a provider event. Success events confirm the booking
// exactly once: the payment flip and the booking's own status guard each make
// replayed deliveries no-ops, while still letting a retry finish a confirmation
// an earlier delivery started and failed.
func (s *Service) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	if !s.VerifySignature(signature, body) {
		return ErrInvalidSignature
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return ErrInvalidSignature
	}
	if payload.Event != "charge.success" {
		s.loggerf("level=info msg=ignoring webhook event event=%s reference=%s", payload.Event, payload.Data.Reference)
		return nil
	}

	p, err := s.payments.GetByReference(ctx, payload.Data.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	expectedMinor := int64(math.Round(p.Amount * 100))
	if payload.Data.Amount != expectedMinor {
		s.loggerf("level=error msg=webhook amount mismatch reference=%s got=%d want=%d", p.Reference, payload.Data.Amount, expectedMinor)
		return ErrAmountMismatch
	}

	flipped, err := s.payments.MarkPaidIdempotent(ctx, p.Reference, string(body), time.Now().UTC())
	if err != nil {
		return err
	}
	if !flipped {
		s.loggerf("level=info msg=webhook replay reference=%s", p.Reference)
	}

	// Confirm on replays too: if an earlier delivery flipped the payment but
	// failed before confirming, the provider's retry is the only chance to
	// finish the job. The booking status guard keeps this idempotent.
	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return err
	}
	if b.Status != domain.BookingPending {
		// Vendor may have confirmed manually in the meantime; the payment
		// record is marked paid either way.
		return nil
	}

	updated, err := s.bookings.UpdateStatusWithRestore(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed, "")
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil
		}
		return err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingConfirmed(ctx, updated.UserID, updated.ID, updated.PackageID)
	}
	return nil
}
