package training

import (
	"context"

	"oloustream/internal/domain/notification"
)

type Notifier interface {
	Notify(ctx context.Context, in notification.Input) (*notification.Notification, error)
	NotifyMany(ctx context.Context, userIDs []int64, in notification.Input) ([]*notification.Notification, error)
}

type StaffDirectory interface {
	StaffIDs(ctx context.Context) ([]int64, error)
}
