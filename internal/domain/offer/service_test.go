package offer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"oloustream/internal/database"
	"oloustream/internal/domain/catalog"
	"oloustream/internal/domain/notification"
	"oloustream/internal/mailer"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, in notification.Input) (*notification.Notification, error) {
	args := m.Called(ctx, in)
	return nil, args.Error(0)
}

func (m *MockNotifier) NotifyMany(ctx context.Context, userIDs []int64, in notification.Input) ([]*notification.Notification, error) {
	args := m.Called(ctx, userIDs, in)
	return nil, args.Error(0)
}

type staticStaff []int64

func (s staticStaff) StaffIDs(context.Context) ([]int64, error) { return s, nil }

type knownServices map[int64]bool

func (k knownServices) GetService(_ context.Context, id int64) (*catalog.Service, error) {
	if !k[id] {
		return nil, catalog.ErrServiceNotFound
	}
	return &catalog.Service{ID: id}, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	jobs []mailer.Job
}

func (m *recordingMailer) Enqueue(_ context.Context, job mailer.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

var today = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func setupTestService(t *testing.T) (*Service, *MockNotifier, *recordingMailer) {
	t.Helper()
	dsn := fmt.Sprintf("file:offer_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, database.Silent())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, Models()...))

	notifier := &MockNotifier{}
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()
	notifier.On("NotifyMany", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	mail := &recordingMailer{}
	svc := NewService(db, knownServices{7: true}, notifier, staticStaff{1}, mail)
	svc.now = func() time.Time { return today }
	return svc, notifier, mail
}

func day(offset int) time.Time { return today.AddDate(0, 0, offset) }

func TestCreateOffer_Validation(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateOffer(ctx, OfferRequest{ServiceID: 99, Title: "Promo", StartDate: day(0), EndDate: day(5)})
	assert.ErrorIs(t, err, ErrServiceNotFound)
	_, err = svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Promo", DiscountPercent: 120, StartDate: day(0), EndDate: day(5)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Promo", StartDate: day(5), EndDate: day(0)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	o, err := svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Promo", DiscountPercent: 20, StartDate: day(0), EndDate: day(0)})
	require.NoError(t, err)
	assert.True(t, o.IsActive)
	assert.True(t, o.Open(today.Add(9*time.Hour)), "a one-day offer is open until the end of that day")
}

func TestListOffers_OnlyOpenForPublic(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	running, err := svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Running", StartDate: day(-2), EndDate: day(2)})
	require.NoError(t, err)
	_, err = svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Expired", StartDate: day(-10), EndDate: day(-1)})
	require.NoError(t, err)
	_, err = svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Upcoming", StartDate: day(1), EndDate: day(3)})
	require.NoError(t, err)
	_, err = svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Paused", StartDate: day(-1), EndDate: day(1), IsActive: func() *bool { b := false; return &b }()})
	require.NoError(t, err)

	public, err := svc.ListOffers(ctx, true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, running.ID, public[0].ID)

	all, err := svc.ListOffers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestApplyOffer(t *testing.T) {
	svc, notifier, _ := setupTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Clip -30%", DiscountPercent: 30, StartDate: day(-1), EndDate: day(1)})
	require.NoError(t, err)
	closed, err := svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Old", StartDate: day(-5), EndDate: day(-1)})
	require.NoError(t, err)

	a, err := svc.ApplyOffer(ctx, 10, o.ID, ApplyOfferRequest{Message: "Interested"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)
	notifier.AssertCalled(t, "NotifyMany", mock.Anything, []int64{1}, mock.MatchedBy(func(in notification.Input) bool {
		return in.Target == notification.OfferAppTarget(a.ID) && *in.ActorID == 10
	}))

	_, err = svc.ApplyOffer(ctx, 10, o.ID, ApplyOfferRequest{})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	err = svc.repo.CreateOfferApplication(ctx, &OfferApplication{UserID: 10, OfferID: o.ID, Status: StatusPending})
	assert.ErrorIs(t, err, ErrAlreadyApplied, "unique index backs the service check")

	_, err = svc.ApplyOffer(ctx, 10, closed.ID, ApplyOfferRequest{})
	assert.ErrorIs(t, err, ErrOfferClosed)
	_, err = svc.ApplyOffer(ctx, 10, 999, ApplyOfferRequest{})
	assert.ErrorIs(t, err, ErrOfferNotFound)

	mine, err := svc.MyOfferApplications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Offer)
	assert.Equal(t, "Clip -30%", mine[0].Offer.Title)
}

func TestDecideOfferApplication(t *testing.T) {
	svc, notifier, _ := setupTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOffer(ctx, OfferRequest{ServiceID: 7, Title: "Podcast", StartDate: day(0), EndDate: day(7)})
	require.NoError(t, err)
	a, err := svc.ApplyOffer(ctx, 12, o.ID, ApplyOfferRequest{})
	require.NoError(t, err)

	_, err = svc.DecideOfferApplication(ctx, a.ID, 1, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	got, err := svc.DecideOfferApplication(ctx, a.ID, 1, StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	require.NotNil(t, got.DecidedByID)
	assert.Equal(t, int64(1), *got.DecidedByID)
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(in notification.Input) bool {
		return in.UserID == 12 && in.Target == notification.OfferAppTarget(a.ID)
	}))

	calls := len(notifier.Calls)
	_, err = svc.DecideOfferApplication(ctx, a.ID, 1, StatusAccepted)
	require.NoError(t, err)
	assert.Len(t, notifier.Calls, calls, "repeating a decision sends nothing")

	list, total, err := svc.OfferApplications(ctx, o.ID, StatusAccepted, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.ID, list[0].ID)

	_, err = svc.DecideOfferApplication(ctx, 999, 1, StatusRejected)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestCreateJob_SlugAndVisibility(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	draft, err := svc.CreateJob(ctx, JobRequest{Title: "Monteur vidéo", Type: JobInternship})
	require.NoError(t, err)
	assert.Equal(t, "monteur-video", draft.Slug)
	assert.Equal(t, JobDraft, draft.Status)

	second, err := svc.CreateJob(ctx, JobRequest{Title: "Monteur Vidéo", Publish: true})
	require.NoError(t, err)
	assert.Equal(t, "monteur-video-2", second.Slug)
	assert.Equal(t, JobEmployment, second.Type)

	_, err = svc.GetJobBySlug(ctx, draft.Slug, true)
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = svc.GetJobBySlug(ctx, draft.Slug, false)
	assert.NoError(t, err)

	public, err := svc.ListJobs(ctx, true, "", "")
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, second.ID, public[0].ID)

	_, err = svc.SetJobStatus(ctx, draft.ID, JobPublished)
	require.NoError(t, err)
	interns, err := svc.ListJobs(ctx, true, "", JobInternship)
	require.NoError(t, err)
	assert.Len(t, interns, 1)

	_, err = svc.SetJobStatus(ctx, draft.ID, "ARCHIVED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = svc.CreateJob(ctx, JobRequest{Title: "X", Type: "FREELANCE"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApplyJob(t *testing.T) {
	svc, notifier, _ := setupTestService(t)
	ctx := context.Background()

	deadline := today.Add(-10 * time.Hour)
	j, err := svc.CreateJob(ctx, JobRequest{Title: "Cadreur", Publish: true, Deadline: &deadline})
	require.NoError(t, err)

	req := ApplyJobRequest{FullName: "Awa Koné", Email: "awa@example.com"}
	a, err := svc.ApplyJob(ctx, 20, j.Slug, req)
	require.NoError(t, err, "the deadline day is still open")
	assert.Equal(t, StatusPending, a.Status)
	notifier.AssertCalled(t, "NotifyMany", mock.Anything, []int64{1}, mock.MatchedBy(func(in notification.Input) bool {
		return in.Target == notification.JobAppTarget(a.ID)
	}))

	_, err = svc.ApplyJob(ctx, 20, j.Slug, req)
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	svc.now = func() time.Time { return today.AddDate(0, 0, 1) }
	_, err = svc.ApplyJob(ctx, 21, j.Slug, req)
	assert.ErrorIs(t, err, ErrOfferClosed)
	svc.now = func() time.Time { return today }

	_, err = svc.SetJobStatus(ctx, j.ID, JobClosed)
	require.NoError(t, err)
	_, err = svc.ApplyJob(ctx, 22, j.Slug, req)
	assert.ErrorIs(t, err, ErrJobNotFound)

	mine, err := svc.MyJobApplications(ctx, 20)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Cadreur", mine[0].Offer.Title)
}

func TestDecideJobApplication(t *testing.T) {
	svc, notifier, mail := setupTestService(t)
	ctx := context.Background()

	j, err := svc.CreateJob(ctx, JobRequest{Title: "Ingénieur son", Publish: true})
	require.NoError(t, err)
	a, err := svc.ApplyJob(ctx, 30, j.Slug, ApplyJobRequest{FullName: "Ibrahim Traoré", Email: "ibrahim@example.com"})
	require.NoError(t, err)

	note := "strong portfolio"
	got, err := svc.DecideJobApplication(ctx, a.ID, 1, DecisionRequest{Status: StatusAccepted, InternalNote: &note})
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	assert.Equal(t, note, got.InternalNote)
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(in notification.Input) bool {
		return in.UserID == 30 && in.Target == notification.JobAppTarget(a.ID)
	}))
	require.Len(t, mail.jobs, 1)
	assert.Equal(t, mailer.TemplateJobDecision, mail.jobs[0].Template)
	assert.Equal(t, "ibrahim@example.com", mail.jobs[0].To)
	assert.Equal(t, "ACCEPTED", mail.jobs[0].Data["status"])

	calls := len(notifier.Calls)
	other := "second interview done"
	got, err = svc.DecideJobApplication(ctx, a.ID, 1, DecisionRequest{Status: StatusAccepted, InternalNote: &other})
	require.NoError(t, err)
	assert.Equal(t, other, got.InternalNote, "note updates without a status change")
	assert.Len(t, notifier.Calls, calls)
	assert.Len(t, mail.jobs, 1)

	list, total, err := svc.JobApplications(ctx, j.ID, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, other, list[0].InternalNote)

	_, err = svc.DecideJobApplication(ctx, a.ID, 1, DecisionRequest{Status: "MAYBE"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
