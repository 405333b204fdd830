package notification

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"oloustream/internal/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, database.Silent())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, Models()...))
	return db
}

type recordingPusher struct {
	mu     sync.Mutex
	events map[int64][]any
}

func (p *recordingPusher) SendToUser(userID int64, event any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[int64][]any{}
	}
	p.events[userID] = append(p.events[userID], event)
	return true
}

func TestNotify_PersistsTargetAndPushes(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))
	pusher := &recordingPusher{}
	svc.SetPusher(pusher)
	ctx := context.Background()
	actor := int64(9)

	n, err := svc.Notify(ctx, Input{
		UserID:  5,
		ActorID: &actor,
		Type:    TypeReservationStatusChanged,
		Title:   "Reservation confirmed",
		Message: "Your reservation #12 is now CONFIRMED",
		Target:  ReservationTarget(12),
		Link:    "/reservations/12",
	})
	require.NoError(t, err)
	assert.NotZero(t, n.ID)

	res, err := svc.List(ctx, 5, false, 1, 20)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(1), res.Unread)
	assert.Equal(t, &Target{Kind: TargetReservation, ID: 12}, res.Items[0].Target)
	assert.Equal(t, &actor, res.Items[0].ActorID)
	assert.Len(t, pusher.events[5], 1)
}

func TestNotify_Rejects(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))
	ctx := context.Background()

	_, err := svc.Notify(ctx, Input{UserID: 0, Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, err = svc.Notify(ctx, Input{UserID: 1, Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, err = svc.Notify(ctx, Input{UserID: 1, Title: "x", Target: Target{Kind: "studio", ID: 3}})
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, err = svc.Notify(ctx, Input{UserID: 1, Title: "x", Target: Target{Kind: TargetPayment}})
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, err = svc.Notify(ctx, Input{UserID: 1, Title: "x", Type: "WHATEVER"})
	assert.ErrorIs(t, err, ErrInvalidNotification)
}

func TestNotifyMany_SkipsActorAndDuplicates(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))
	ctx := context.Background()
	actor := int64(1)

	list, err := svc.NotifyMany(ctx, []int64{1, 2, 3, 3, 0}, Input{
		ActorID: &actor,
		Type:    TypeMessageReceived,
		Title:   "New message",
		Target:  ConversationTarget(4),
	})
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, id := range []int64{2, 3} {
		count, err := svc.UnreadCount(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	}
	count, err := svc.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkReadAndPurge(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))
	ctx := context.Background()

	first, err := svc.Notify(ctx, Input{UserID: 7, Title: "one"})
	require.NoError(t, err)
	_, err = svc.Notify(ctx, Input{UserID: 7, Title: "two"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, first.ID, 7))
	assert.ErrorIs(t, svc.MarkRead(ctx, first.ID, 8), ErrNotificationNotFound)

	unread, err := svc.List(ctx, 7, true, 1, 20)
	require.NoError(t, err)
	assert.Len(t, unread.Items, 1)
	assert.Equal(t, "two", unread.Items[0].Title)

	updated, err := svc.MarkAllRead(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	deleted, err := svc.PurgeRead(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
