package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"oloustream/internal/domain/notification"
	"oloustream/internal/domain/reservation"
)

type Service struct {
	db           *gorm.DB
	repo         *Repository
	reservations reservationReader
	notifier     Notifier
	staff        StaffDirectory
	now          func() time.Time
}

func NewService(db *gorm.DB, reservations reservationReader, notifier Notifier, staff StaffDirectory) *Service {
	return &Service{
		db:           db,
		repo:         NewRepository(db),
		reservations: reservations,
		notifier:     notifier,
		staff:        staff,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type CreateRequest struct {
	ReservationID  *int64 `json:"reservation_id"`
	Amount         int64  `json:"amount"`
	Method         Method `json:"method" binding:"required"`
	TransactionRef string `json:"transaction_ref" binding:"max=100"`
}

// Create records a declared payment in PENDING state.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*Payment, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidMethod
	}
	if req.ReservationID != nil && s.reservations != nil {
		res, err := s.reservations.GetByID(ctx, *req.ReservationID)
		if errors.Is(err, reservation.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		if err != nil {
			return nil, err
		}
		if res.UserID != userID {
			return nil, ErrForbidden
		}
	}

	p := &Payment{
		UserID:        userID,
		ReservationID: req.ReservationID,
		Amount:        req.Amount,
		Method:        req.Method,
		Status:        StatusPending,
	}
	if ref := strings.TrimSpace(req.TransactionRef); ref != "" {
		p.TransactionRef = &ref
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("payment_created id=%d user_id=%d amount=%d method=%s", p.ID, userID, p.Amount, p.Method)

	s.notifyStaff(ctx, p)
	return p, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64, page, pageSize int) ([]Payment, int64, error) {
	return s.repo.List(ctx, Filters{UserID: userID}, pageSize, (page-1)*pageSize)
}

func (s *Service) List(ctx context.Context, f Filters, page, pageSize int) ([]Payment, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, f, pageSize, (page-1)*pageSize)
}

type StatusRequest struct {
	Status Status `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"max=255"`
}

// UpdateStatus is idempotent: repeating the current status changes nothing
// and sends no notification. PAID is final.
func (s *Service) UpdateStatus(ctx context.Context, id, adminID int64, req StatusRequest) (*Payment, error) {
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	var (
		p       *Payment
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		p, err = repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Status == req.Status {
			return nil
		}
		if p.Status == StatusPaid {
			return ErrInvalidTransition
		}

		p.Status = req.Status
		p.UpdatedByID = &adminID
		switch req.Status {
		case StatusPaid:
			now := s.now()
			p.PaidAt = &now
			p.FailureReason = ""
		case StatusFailed:
			p.FailureReason = strings.TrimSpace(req.Reason)
		}
		changed = true
		return repo.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		log.Printf("payment_status_changed id=%d status=%s actor_id=%d", p.ID, p.Status, adminID)
		s.notifyClient(ctx, p, adminID)
	}
	return p, nil
}

func (s *Service) notifyStaff(ctx context.Context, p *Payment) {
	if s.notifier == nil || s.staff == nil {
		return
	}
	ids, err := s.staff.StaffIDs(ctx)
	if err != nil {
		log.Printf("payment_notify_failed id=%d err=%v", p.ID, err)
		return
	}
	actor := p.UserID
	_, err = s.notifier.NotifyMany(ctx, ids, notification.Input{
		ActorID: &actor,
		Type:    notification.TypePaymentStatus,
		Title:   "Payment to verify",
		Message: fmt.Sprintf("Payment #%d of %d via %s awaits verification", p.ID, p.Amount/100, p.Method),
		Target:  notification.PaymentTarget(p.ID),
	})
	if err != nil {
		log.Printf("payment_notify_failed id=%d err=%v", p.ID, err)
	}
}

func (s *Service) notifyClient(ctx context.Context, p *Payment, actorID int64) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.Notify(ctx, notification.Input{
		UserID:  p.UserID,
		ActorID: &actorID,
		Type:    notification.TypePaymentStatus,
		Title:   "Payment updated",
		Message: fmt.Sprintf("Your payment #%d is now %s", p.ID, p.Status),
		Target:  notification.PaymentTarget(p.ID),
	})
	if err != nil {
		log.Printf("payment_notify_failed id=%d user_id=%d err=%v", p.ID, p.UserID, err)
	}
}
