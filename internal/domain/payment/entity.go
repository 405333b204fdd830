package payment

import "time"

type Method string

const (
	MethodOrangeMoney Method = "ORANGE_MONEY"
	MethodMoovMoney   Method = "MOOV_MONEY"
)

func (m Method) Valid() bool {
	return m == MethodOrangeMoney || m == MethodMoovMoney
}

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed:
		return true
	}
	return false
}

// Payment records a mobile money payment declared by a client. No gateway is
// called; staff confirm or reject it by hand.
type Payment struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	UserID         int64      `json:"user_id" gorm:"index;not null"`
	ReservationID  *int64     `json:"reservation_id,omitempty" gorm:"index"`
	Amount         int64      `json:"amount" gorm:"not null;check:chk_payments_amount,amount > 0"`
	Method         Method     `json:"method" gorm:"type:varchar(20);not null"`
	Status         Status     `json:"status" gorm:"type:varchar(20);not null;default:PENDING;index"`
	TransactionRef *string    `json:"transaction_ref,omitempty" gorm:"type:varchar(100);uniqueIndex"`
	FailureReason  string     `json:"failure_reason,omitempty" gorm:"type:varchar(255)"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	UpdatedByID    *int64     `json:"updated_by_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

func Models() []any {
	return []any{&Payment{}}
}
