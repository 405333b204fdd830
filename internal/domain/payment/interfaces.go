package payment

import (
	"context"

	"oloustream/internal/domain/notification"
	"oloustream/internal/domain/reservation"
)

type reservationReader interface {
	GetByID(ctx context.Context, id int64) (*reservation.Reservation, error)
}

type Notifier interface {
	Notify(ctx context.Context, in notification.Input) (*notification.Notification, error)
	NotifyMany(ctx context.Context, userIDs []int64, in notification.Input) ([]*notification.Notification, error)
}

type StaffDirectory interface {
	StaffIDs(ctx context.Context) ([]int64, error)
}
