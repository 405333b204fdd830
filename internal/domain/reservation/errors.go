package reservation

import "errors"

var (
	ErrNotFound             = errors.New("reservation not found")
	ErrInvalidTimeRange     = errors.New("start must precede end")
	ErrStartInPast          = errors.New("start must be in the future")
	ErrSlotTaken            = errors.New("this slot is already booked for this studio")
	ErrStudioUnavailable    = errors.New("studio is not available for booking")
	ErrEquipmentUnavailable = errors.New("equipment is not available for rent")
	ErrServiceUnavailable   = errors.New("service is not available")
	ErrNothingReserved      = errors.New("a reservation needs a studio, equipment or a service")
	ErrInvalidStatus        = errors.New("invalid reservation status")
	ErrForbidden            = errors.New("reservation belongs to another user")
	ErrHistoryImmutable     = errors.New("status history rows cannot be modified")
)
