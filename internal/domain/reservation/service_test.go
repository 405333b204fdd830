package reservation

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"oloustream/internal/database"
	"oloustream/internal/domain/catalog"
	"oloustream/internal/domain/notification"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, in notification.Input) (*notification.Notification, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotifier) NotifyMany(ctx context.Context, userIDs []int64, in notification.Input) ([]*notification.Notification, error) {
	args := m.Called(ctx, userIDs, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

type staticStaff []int64

func (s staticStaff) StaffIDs(context.Context) ([]int64, error) { return s, nil }

type fixture struct {
	db       *gorm.DB
	svc      *Service
	notifier *MockNotifier
	studio   *catalog.Studio
	day      time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:reservation_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, database.Silent())
	require.NoError(t, err)
	models := append(catalog.Models(), Models()...)
	require.NoError(t, database.Migrate(db, models...))

	studio := &catalog.Studio{Name: "Plateau A", Code: "PLA-A", Type: catalog.StudioVideo, Status: catalog.StudioAvailable, IsActive: true, Capacity: 10}
	require.NoError(t, db.Create(studio).Error)

	notifier := &MockNotifier{}
	notifier.On("NotifyMany", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil, nil).Maybe()

	svc := NewService(db, notifier, staticStaff{100, 101})
	day := time.Now().UTC().Add(72 * time.Hour).Truncate(24 * time.Hour)
	return &fixture{db: db, svc: svc, notifier: notifier, studio: studio, day: day}
}

func (f *fixture) request(fromHour, toHour int) CreateRequest {
	return CreateRequest{
		Contact: Contact{Name: "Awa Koné", Email: "awa@example.com"},
		StartAt: f.day.Add(time.Duration(fromHour) * time.Hour),
		EndAt:   f.day.Add(time.Duration(toHour) * time.Hour),
	}
}

func (f *fixture) historyCount(t *testing.T, id int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&StatusHistory{}).Where("reservation_id = ?", id).Count(&n).Error)
	return n
}

func TestCreateForStudio_OverlapScenarios(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)

	_, err = f.svc.CreateForStudio(ctx, 2, f.studio.ID, f.request(11, 13))
	assert.ErrorIs(t, err, ErrSlotTaken)

	c, err := f.svc.CreateForStudio(ctx, 2, f.studio.ID, f.request(12, 13))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)

	_, err = f.svc.CreateForStudio(ctx, 3, f.studio.ID, f.request(9, 14))
	assert.ErrorIs(t, err, ErrSlotTaken)

	var count int64
	require.NoError(t, f.db.Model(&Reservation{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	f.notifier.AssertNumberOfCalls(t, "NotifyMany", 2)
}

func TestCreate_CancelledReservationFreesSlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)
	_, err = f.svc.QuickCancel(ctx, a.ID, 100, "")
	require.NoError(t, err)

	_, err = f.svc.CreateForStudio(ctx, 2, f.studio.ID, f.request(10, 12))
	assert.NoError(t, err)
}

func TestCreate_WindowValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(12, 12))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
	_, err = f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(13, 12))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	past := f.request(10, 12)
	past.StartAt = time.Now().Add(-time.Hour)
	_, err = f.svc.CreateForStudio(ctx, 1, f.studio.ID, past)
	assert.ErrorIs(t, err, ErrStartInPast)

	_, err = f.svc.Create(ctx, 1, f.request(10, 12), OriginGeneric)
	assert.ErrorIs(t, err, ErrNothingReserved)

	_, err = f.svc.CreateForStudio(ctx, 1, 9999, f.request(10, 12))
	assert.ErrorIs(t, err, catalog.ErrStudioNotFound)
}

func TestCreate_StudioNotBookable(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Model(f.studio).Update("status", catalog.StudioMaintenance).Error)

	_, err := f.svc.CreateForStudio(context.Background(), 1, f.studio.ID, f.request(10, 12))
	assert.ErrorIs(t, err, ErrStudioUnavailable)
}

func TestCreateForEquipment_RequiresRentableItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	camera := &catalog.Equipment{Name: "Sony FX6", Status: catalog.EquipmentAvailable, IsAvailableForRent: true}
	light := &catalog.Equipment{Name: "Aputure 600d", Status: catalog.EquipmentMaintenance, IsAvailableForRent: true}
	require.NoError(t, f.db.Create(camera).Error)
	require.NoError(t, f.db.Create(light).Error)

	res, err := f.svc.CreateForEquipment(ctx, 1, camera.ID, f.request(10, 12))
	require.NoError(t, err)

	loaded, err := f.svc.Detail(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Reservation.Equipment, 1)
	assert.Equal(t, camera.ID, loaded.Reservation.Equipment[0].ID)

	req := f.request(10, 12)
	req.EquipmentIDs = []int64{camera.ID}
	_, err = f.svc.CreateForEquipment(ctx, 1, light.ID, req)
	assert.ErrorIs(t, err, ErrEquipmentUnavailable)

	_, err = f.svc.CreateForEquipment(ctx, 1, 4242, f.request(10, 12))
	assert.ErrorIs(t, err, catalog.ErrEquipmentNotFound)
}

func TestCreate_LogsInitialHistoryRow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.CreateForStudio(ctx, 7, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)

	d, err := f.svc.Detail(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, d.History, 1)
	h := d.History[0]
	assert.Equal(t, StatusPending, h.OldStatus)
	assert.Equal(t, StatusPending, h.NewStatus)
	require.NotNil(t, h.ChangedByID)
	assert.Equal(t, int64(7), *h.ChangedByID)
	assert.Equal(t, "created from studio form", h.Note)
	assert.Equal(t, []Status{StatusConfirmed, StatusRejected, StatusCancelled}, d.Next)
}

func TestLogStatusChange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := NewRepository(f.db)

	res, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)
	base := f.historyCount(t, res.ID)

	logged, err := repo.LogStatusChange(ctx, res.ID, StatusPending, StatusPending, nil, "noop", false)
	require.NoError(t, err)
	assert.False(t, logged)
	assert.Equal(t, base, f.historyCount(t, res.ID))

	logged, err = repo.LogStatusChange(ctx, res.ID, StatusPending, StatusPending, nil, "forced", true)
	require.NoError(t, err)
	assert.True(t, logged)
	assert.Equal(t, base+1, f.historyCount(t, res.ID))

	long := strings.Repeat("é", 600)
	_, err = repo.LogStatusChange(ctx, res.ID, StatusCompleted, StatusPending, nil, long, false)
	require.NoError(t, err)

	history, err := repo.History(ctx, res.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, 500, len([]rune(last.Note)))
	assert.Equal(t, StatusCompleted, last.OldStatus)
}

func TestStatusHistory_IsImmutable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)

	history, err := NewRepository(f.db).History(ctx, res.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	row := history[0]
	row.Note = "rewritten"
	assert.ErrorIs(t, f.db.Save(&row).Error, ErrHistoryImmutable)
}

func TestUpdateByAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)
	b, err := f.svc.CreateForStudio(ctx, 2, f.studio.ID, f.request(12, 14))
	require.NoError(t, err)

	confirmed := StatusConfirmed
	comment := "see you there"
	updated, err := f.svc.UpdateByAdmin(ctx, a.ID, 100, AdminUpdateRequest{Status: &confirmed, AdminComment: &comment, Note: "ok"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, comment, updated.AdminComment)
	assert.Equal(t, int64(2), f.historyCount(t, a.ID))
	f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(in notification.Input) bool {
		return in.UserID == 1 && in.Type == notification.TypeReservationStatusChanged && in.Target == notification.ReservationTarget(a.ID)
	}))

	again, err := f.svc.UpdateByAdmin(ctx, a.ID, 100, AdminUpdateRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, again.Status)
	assert.Equal(t, int64(2), f.historyCount(t, a.ID))

	newEnd := f.day.Add(13 * time.Hour)
	_, err = f.svc.UpdateByAdmin(ctx, a.ID, 100, AdminUpdateRequest{EndAt: &newEnd})
	assert.ErrorIs(t, err, ErrSlotTaken)

	newStart := f.day.Add(9 * time.Hour)
	moved, err := f.svc.UpdateByAdmin(ctx, a.ID, 100, AdminUpdateRequest{StartAt: &newStart})
	require.NoError(t, err)
	assert.True(t, moved.StartAt.Equal(newStart))

	badEnd := f.day.Add(8 * time.Hour)
	_, err = f.svc.UpdateByAdmin(ctx, a.ID, 100, AdminUpdateRequest{EndAt: &badEnd})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	bogus := Status("ARCHIVED")
	_, err = f.svc.UpdateByAdmin(ctx, b.ID, 100, AdminUpdateRequest{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateByAdmin(ctx, 9999, 100, AdminUpdateRequest{Status: &confirmed})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateByAdmin_ReactivationChecksSlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)
	rejected := StatusRejected
	_, err = f.svc.UpdateByAdmin(ctx, a.ID, 100, AdminUpdateRequest{Status: &rejected})
	require.NoError(t, err)

	_, err = f.svc.CreateForStudio(ctx, 2, f.studio.ID, f.request(11, 12))
	require.NoError(t, err)

	pending := StatusPending
	_, err = f.svc.UpdateByAdmin(ctx, a.ID, 100, AdminUpdateRequest{Status: &pending})
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestQuickCancel_IsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)

	cancelled, err := f.svc.QuickCancel(ctx, res.ID, 100, "")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(2), f.historyCount(t, res.ID))

	_, err = f.svc.QuickCancel(ctx, res.ID, 100, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.historyCount(t, res.ID))
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestListForAdmin_FiltersAndStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other := &catalog.Studio{Name: "Cabine", Code: "AUD-1", Status: catalog.StudioAvailable, IsActive: true}
	require.NoError(t, f.db.Create(other).Error)

	a, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)
	req := f.request(10, 12)
	req.Contact = Contact{Name: "Studio Lumière", Email: "contact@lumiere.ci", Company: "Lumière SARL"}
	_, err = f.svc.CreateForStudio(ctx, 2, other.ID, req)
	require.NoError(t, err)
	_, err = f.svc.QuickCancel(ctx, a.ID, 100, "")
	require.NoError(t, err)

	list, err := f.svc.ListForAdmin(ctx, AdminFilters{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, int64(2), list.Stats.Total)
	assert.Equal(t, int64(1), list.Stats.ByStatus[StatusCancelled])
	assert.Equal(t, int64(1), list.Stats.ByStatus[StatusPending])
	assert.Equal(t, int64(1), list.Stats.Upcoming)
	assert.Equal(t, int64(0), list.Stats.Past)

	list, err = f.svc.ListForAdmin(ctx, AdminFilters{Query: "lumière"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, other.ID, *list.Items[0].StudioID)

	list, err = f.svc.ListForAdmin(ctx, AdminFilters{Status: StatusCancelled}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, int64(2), list.Stats.Total)

	from := f.day.Add(24 * time.Hour)
	list, err = f.svc.ListForAdmin(ctx, AdminFilters{DateFrom: &from}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), list.Total)

	_, err = f.svc.ListForAdmin(ctx, AdminFilters{Status: "NOPE"}, 1, 20)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDetailForUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.CreateForStudio(ctx, 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)

	own, err := f.svc.DetailForUser(ctx, res.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, own.Next)
	_, err = f.svc.DetailForUser(ctx, res.ID, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	mine, total, err := f.svc.ListMine(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Studio)
	assert.Equal(t, "PLA-A", mine[0].Studio.Code)
}
