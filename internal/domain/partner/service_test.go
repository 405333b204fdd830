package partner

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"oloustream/internal/database"
	"oloustream/internal/domain/account"
	"oloustream/internal/domain/notification"
	"oloustream/internal/mailer"
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

func (m *recordingMailer) last() mailer.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.jobs) == 0 {
		return mailer.Job{}
	}
	return m.jobs[len(m.jobs)-1]
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	notifier *MockNotifier
	mail     *recordingMailer
	region   *Region
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:partner_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, database.Silent())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, append(account.Models(), Models()...)...))

	notifier := &MockNotifier{}
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	notifier.On("NotifyMany", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	mail := &recordingMailer{}

	svc := NewService(db, notifier, staticStaff{1}, mail, 2000)
	region, err := svc.CreateRegion(context.Background(), RegionRequest{Name: "Ouagadougou", IsPriority: true})
	require.NoError(t, err)
	return &fixture{db: db, svc: svc, notifier: notifier, mail: mail, region: region}
}

func (f *fixture) activePartner(t *testing.T, email string) *Partner {
	t.Helper()
	ctx := context.Background()
	app, err := f.svc.Apply(ctx, ApplicationRequest{
		FullName: "Issa Ouédraogo Junior",
		Phone:    "+22670000000",
		Email:    email,
		IDNumber: "B1234567",
		RegionID: &f.region.ID,
	})
	require.NoError(t, err)
	act, err := f.svc.Approve(ctx, app.ID, 1)
	require.NoError(t, err)
	return act.Partner
}

func TestCommissionFor(t *testing.T) {
	assert.Equal(t, int64(200000), CommissionFor(1000000, 2000))
	assert.Equal(t, int64(0), CommissionFor(0, 2000))
	assert.Equal(t, int64(12345), CommissionFor(123456, 1000))
	assert.Equal(t, int64(1500), CommissionFor(10000, 1500))

	assert.Equal(t, int64(1000000000000000), CommissionFor(5000000000000000, 2000))
	assert.Equal(t, int64(MaxContractAmount), CommissionFor(MaxContractAmount, MaxRateBP))
	assert.Equal(t, int64(MaxContractAmount/5), CommissionFor(MaxContractAmount, 2000))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "200 000", FormatAmount(20000000))
	assert.Equal(t, "1 000 000", FormatAmount(100000000))
	assert.Equal(t, "999", FormatAmount(99900))
	assert.Equal(t, "-1 500", FormatAmount(-150000))
}

func TestApprove_CreatesUserAndPartner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, ApplicationRequest{
		FullName: "Issa Ouédraogo",
		Phone:    "+22670000000",
		Email:    "Issa@Example.com",
		IDNumber: "B1234567",
		RegionID: &f.region.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, ApplicationPending, app.Status)
	assert.Equal(t, "cnib", app.IDType)
	f.notifier.AssertCalled(t, "NotifyMany", mock.Anything, []int64{1}, mock.MatchedBy(func(in notification.Input) bool {
		return in.Target == notification.ApplicationTarget(app.ID)
	}))

	act, err := f.svc.Approve(ctx, app.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "BF-OUAG-001", act.Partner.Code)
	assert.Equal(t, int64(2000), act.Partner.CommissionRateBP)
	assert.True(t, act.Partner.IsActive)
	require.NotNil(t, act.User)
	assert.Equal(t, "issa@example.com", act.User.Email)
	assert.Equal(t, "Issa", act.User.FirstName)
	assert.Equal(t, "Ouédraogo", act.User.LastName)

	require.Len(t, f.mail.jobs, 1)
	job := f.mail.jobs[0]
	assert.Equal(t, mailer.TemplatePartnerActivation, job.Template)
	assert.Equal(t, "BF-OUAG-001", job.Data["partner_code"])
	assert.Len(t, job.Data["password"], generatedPasswordLen)

	stored, err := account.NewRepository(f.db).GetByID(ctx, act.User.ID)
	require.NoError(t, err)
	assert.NoError(t, account.CheckPassword(job.Data["password"], stored.PasswordHash))

	again, err := f.svc.Approve(ctx, app.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, act.Partner.ID, again.Partner.ID)
	assert.Len(t, f.mail.jobs, 1)

	reloaded, err := NewRepository(f.db).GetApplication(ctx, app.ID, false)
	require.NoError(t, err)
	assert.Equal(t, ApplicationApproved, reloaded.Status)
	require.NotNil(t, reloaded.ReviewedByID)

	second := f.activePartner(t, "second@example.com")
	assert.Equal(t, "BF-OUAG-002", second.Code)
}

func TestApprove_Failures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	noEmail, err := f.svc.Apply(ctx, ApplicationRequest{FullName: "Sans Mail", Phone: "1", IDNumber: "X"})
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, noEmail.ID, 1)
	assert.ErrorIs(t, err, ErrMissingEmail)

	_, err = f.svc.Approve(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	f.activePartner(t, "dup@example.com")
	dup, err := f.svc.Apply(ctx, ApplicationRequest{FullName: "Dup", Phone: "1", IDNumber: "Y", Email: "dup@example.com"})
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, dup.ID, 1)
	assert.ErrorIs(t, err, account.ErrEmailAlreadyExists)

	var partners int64
	require.NoError(t, f.db.Model(&Partner{}).Count(&partners).Error)
	assert.Equal(t, int64(1), partners)

	missing := int64(404)
	_, err = f.svc.Apply(ctx, ApplicationRequest{FullName: "X", Phone: "1", IDNumber: "Z", RegionID: &missing})
	assert.ErrorIs(t, err, ErrRegionNotFound)
}

func TestApplicationReviewFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, ApplicationRequest{FullName: "Awa", Phone: "1", IDNumber: "Z", Email: "awa@example.com"})
	require.NoError(t, err)

	app, err = f.svc.SetApplicationStatus(ctx, app.ID, 1, ApplicationInterview, "call on monday")
	require.NoError(t, err)
	assert.Equal(t, ApplicationInterview, app.Status)
	assert.Equal(t, "call on monday", app.InternalNotes)

	_, err = f.svc.SetApplicationStatus(ctx, app.ID, 1, ApplicationApproved, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	app, err = f.svc.Reject(ctx, app.ID, 1, "no network")
	require.NoError(t, err)
	assert.Equal(t, ApplicationRejected, app.Status)
	assert.Equal(t, "call on monday\nno network", app.InternalNotes)
	require.Len(t, f.mail.jobs, 1)
	assert.Equal(t, mailer.TemplatePartnerRejected, f.mail.jobs[0].Template)

	list, total, err := f.svc.ListApplications(ctx, ApplicationRejected, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}

func TestContractValidationUpdatesTotals(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.activePartner(t, "p@example.com")

	c, err := f.svc.SubmitContract(ctx, p.UserID, ContractRequest{ClientName: "Ministère", ClientType: ClientInstitution, Amount: 1000000})
	require.NoError(t, err)
	assert.Equal(t, ContractPending, c.Status)
	assert.Equal(t, int64(200000), c.CommissionAmount)

	validated, err := f.svc.ValidateContract(ctx, c.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, ContractValidated, validated.Status)
	require.NotNil(t, validated.ValidatedAt)

	_, err = f.svc.ValidateContract(ctx, c.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	reloaded, err := NewRepository(f.db).GetPartner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.TotalContracts)
	assert.Equal(t, int64(1000000), reloaded.TotalRevenue)
	assert.Equal(t, int64(200000), reloaded.TotalCommissionEarned)
	assert.Equal(t, int64(200000), reloaded.PendingCommission())
	require.NotNil(t, reloaded.LastContractAt)

	f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(in notification.Input) bool {
		return in.UserID == p.UserID && in.Target == notification.ContractTarget(c.ID)
	}))
	job := f.mail.last()
	assert.Equal(t, mailer.TemplateContractValidated, job.Template)
	assert.Equal(t, "p@example.com", job.To)
	assert.Equal(t, "2 000", job.Data["commission"])

	other, err := f.svc.SubmitContract(ctx, p.UserID, ContractRequest{ClientName: "ONG", ClientType: ClientNGO, Amount: 500000})
	require.NoError(t, err)
	rejected, err := f.svc.RejectContract(ctx, other.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, ContractCancelled, rejected.Status)
	_, err = f.svc.ValidateContract(ctx, other.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	perf, err := f.svc.Performance(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), perf.TotalContracts)
	assert.Equal(t, int64(1500000), perf.TotalAmount)
	assert.Equal(t, int64(750000), perf.AvgContractValue)
	assert.Equal(t, int64(0), perf.Pending)

	_, err = f.svc.AdvanceContract(ctx, c.ID, ContractCompleted)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	for _, st := range []ContractStatus{ContractSigned, ContractInProgress, ContractCompleted} {
		c, err = f.svc.AdvanceContract(ctx, c.ID, st)
		require.NoError(t, err)
	}
	require.NotNil(t, c.CompletedAt)

	perf, err = f.svc.Performance(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), perf.Completed)
}

func TestSubmitContract_Guards(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.SubmitContract(ctx, 12345, ContractRequest{ClientName: "X", ClientType: ClientCompany, Amount: 10})
	assert.ErrorIs(t, err, ErrNotPartner)

	p := f.activePartner(t, "p@example.com")
	_, err = f.svc.SubmitContract(ctx, p.UserID, ContractRequest{ClientName: "X", ClientType: ClientCompany})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.svc.SubmitContract(ctx, p.UserID, ContractRequest{ClientName: "X", ClientType: ClientCompany, Amount: MaxContractAmount + 1})
	assert.ErrorIs(t, err, ErrAmountTooLarge)

	require.NoError(t, f.db.Model(&Partner{}).Where("id = ?", p.ID).Update("is_active", false).Error)
	_, err = f.svc.SubmitContract(ctx, p.UserID, ContractRequest{ClientName: "X", ClientType: ClientCompany, Amount: 10})
	assert.ErrorIs(t, err, ErrPartnerInactive)
}

func TestLargeContractKeepsTotalsExact(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.activePartner(t, "p@example.com")

	c, err := f.svc.SubmitContract(ctx, p.UserID, ContractRequest{ClientName: "Etat", ClientType: ClientInstitution, Amount: 5000000000000000})
	require.NoError(t, err)
	assert.Equal(t, int64(1000000000000000), c.CommissionAmount)

	_, err = f.svc.ValidateContract(ctx, c.ID, 1)
	require.NoError(t, err)

	reloaded, err := NewRepository(f.db).GetPartner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000000000000000), reloaded.TotalRevenue)
	assert.Equal(t, int64(1000000000000000), reloaded.TotalCommissionEarned)
	assert.Equal(t, int64(1000000000000000), reloaded.PendingCommission())
}

func TestPayCommission(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.activePartner(t, "p@example.com")

	c, err := f.svc.SubmitContract(ctx, p.UserID, ContractRequest{ClientName: "Festival", ClientType: ClientEvent, Amount: 1000000})
	require.NoError(t, err)
	_, err = f.svc.ValidateContract(ctx, c.ID, 1)
	require.NoError(t, err)
	cancelled, err := f.svc.SubmitContract(ctx, p.UserID, ContractRequest{ClientName: "Y", ClientType: ClientCompany, Amount: 10, Draft: true})
	require.NoError(t, err)
	_, err = f.svc.RejectContract(ctx, cancelled.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.PayCommission(ctx, p.ID, 1, PaymentRequest{Amount: 0, Method: MethodCash})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = f.svc.PayCommission(ctx, p.ID, 1, PaymentRequest{Amount: 10, Method: "paypal"})
	assert.ErrorIs(t, err, ErrInvalidMethod)
	_, err = f.svc.PayCommission(ctx, p.ID, 1, PaymentRequest{Amount: 10, Method: MethodCash, ContractIDs: []int64{cancelled.ID}})
	assert.ErrorIs(t, err, ErrContractMismatch)

	pay, err := f.svc.PayCommission(ctx, p.ID, 1, PaymentRequest{Amount: 150000, Method: MethodOrangeMoney, Reference: "OM-1", ContractIDs: []int64{c.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), pay.Amount)
	assert.Equal(t, mailer.TemplateCommissionPaid, f.mail.last().Template)
	assert.Equal(t, "OM-1", f.mail.last().Data["reference"])

	_, err = f.svc.PayCommission(ctx, p.ID, 1, PaymentRequest{Amount: 60000, Method: MethodCash})
	assert.ErrorIs(t, err, ErrExceedsPending)

	reloaded, err := NewRepository(f.db).GetPartner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), reloaded.TotalCommissionPaid)
	assert.Equal(t, int64(50000), reloaded.PendingCommission())

	payments, err := f.svc.ListMyPayments(ctx, p.UserID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Len(t, payments[0].Contracts, 1)
	assert.Equal(t, c.ID, payments[0].Contracts[0].ID)

	dash, err := f.svc.Dashboard(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), dash.PendingCommission)
	assert.Len(t, dash.RecentContracts, 2)
}

// applyNaive adds a contract to the partner totals by reading the row into
// memory and writing it back whole. read and write are split so the test
// can interleave two callers.
func applyNaive(t *testing.T, db *gorm.DB, partnerID, amount int64) (write func()) {
	t.Helper()
	var p Partner
	require.NoError(t, db.First(&p, partnerID).Error)
	return func() {
		p.TotalContracts++
		p.TotalRevenue += amount
		p.TotalCommissionEarned += CommissionFor(amount, p.CommissionRateBP)
		require.NoError(t, db.Omit("Application").Save(&p).Error)
	}
}

func TestLostUpdate_NaiveVersusAtomic(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.activePartner(t, "p@example.com")

	writeA := applyNaive(t, f.db, p.ID, 1000000)
	writeB := applyNaive(t, f.db, p.ID, 1000000)
	writeA()
	writeB()

	naive, err := NewRepository(f.db).GetPartner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), naive.TotalContracts, "interleaved read-modify-write loses one increment")

	require.NoError(t, f.db.Model(&Partner{}).Where("id = ?", p.ID).
		Updates(map[string]any{"total_contracts": 0, "total_revenue": 0, "total_commission_earned": 0}).Error)

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const workers = 5
	var ids []int64
	for i := 0; i < workers; i++ {
		c, err := f.svc.SubmitContract(ctx, p.UserID, ContractRequest{ClientName: "C", ClientType: ClientCompany, Amount: 1000000})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	repo := NewRepository(f.db)
	before, err := repo.GetPartner(ctx, p.ID)
	require.NoError(t, err)

	start := make(chan struct{})
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			<-start
			_, err := f.svc.ValidateContract(ctx, id, 1)
			errs <- err
		}(id)
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	after, err := repo.GetPartner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before.TotalContracts+workers, after.TotalContracts)
	assert.Equal(t, int64(workers*1000000), after.TotalRevenue)
	assert.Equal(t, int64(workers*200000), after.TotalCommissionEarned)
}

func TestTopPartners(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	small := f.activePartner(t, "small@example.com")
	big := f.activePartner(t, "big@example.com")

	repo := NewRepository(f.db)
	require.NoError(t, repo.AddContractTotals(ctx, small.ID, 100, 20, time.Now()))
	require.NoError(t, repo.AddContractTotals(ctx, big.ID, 900, 180, time.Now()))

	top, err := f.svc.TopPartners(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, big.ID, top[0].ID)

	assert.ErrorIs(t, repo.AddContractTotals(ctx, 999, 1, 1, time.Now()), ErrPartnerNotFound)
}

func TestCityCode(t *testing.T) {
	assert.Equal(t, "OUAG", cityCode("Ouagadougou"))
	assert.Equal(t, "BOBO", cityCode("Bobo-Dioulasso"))
	assert.Equal(t, "PO", cityCode("Pô"))
	assert.Equal(t, "GEN", cityCode("  "))
}
