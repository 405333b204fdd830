package messaging

import (
	"context"

	"oloustream/internal/domain/notification"
)

type Notifier interface {
	NotifyMany(ctx context.Context, userIDs []int64, in notification.Input) ([]*notification.Notification, error)
}

type StaffDirectory interface {
	StaffIDs(ctx context.Context) ([]int64, error)
}
