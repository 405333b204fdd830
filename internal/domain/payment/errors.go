package payment

import "errors"

var (
	ErrNotFound            = errors.New("payment not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidMethod       = errors.New("unknown payment method")
	ErrInvalidStatus       = errors.New("unknown payment status")
	ErrInvalidTransition   = errors.New("a paid payment cannot change status")
	ErrDuplicateReference  = errors.New("transaction reference already used")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrForbidden           = errors.New("reservation belongs to another user")
)
