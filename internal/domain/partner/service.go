package partner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"

	"oloustream/internal/domain/account"
	"oloustream/internal/domain/catalog"
	"oloustream/internal/domain/notification"
	"oloustream/internal/mailer"
)

const generatedPasswordLen = 12

type Service struct {
	db          *gorm.DB
	repo        *Repository
	notifier    Notifier
	staff       StaffDirectory
	mail        mailer.Enqueuer
	defaultRate int64
	now         func() time.Time
}

// NewService wires the partner program. defaultRateBP is the commission rate
// given to newly approved partners, in basis points.
func NewService(db *gorm.DB, notifier Notifier, staff StaffDirectory, mail mailer.Enqueuer, defaultRateBP int64) *Service {
	return &Service{
		db:          db,
		repo:        NewRepository(db),
		notifier:    notifier,
		staff:       staff,
		mail:        mail,
		defaultRate: defaultRateBP,
		now:         time.Now,
	}
}

/* ---------- regions ---------- */

func (s *Service) ListRegions(ctx context.Context) ([]Region, error) {
	return s.repo.ListRegions(ctx, true)
}

type RegionRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	IsPriority bool   `json:"is_priority"`
}

func (s *Service) CreateRegion(ctx context.Context, req RegionRequest) (*Region, error) {
	reg := &Region{Name: strings.TrimSpace(req.Name), IsPriority: req.IsPriority, Active: true}
	if err := s.repo.CreateRegion(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

/* ---------- applications ---------- */

type ApplicationRequest struct {
	FullName           string `json:"full_name" binding:"required,max=200"`
	Phone              string `json:"phone" binding:"required,max=20"`
	Email              string `json:"email" binding:"omitempty,email,max=255"`
	WhatsApp           string `json:"whatsapp" binding:"max=20"`
	IDType             string `json:"id_type" binding:"omitempty,oneof=cnib passport"`
	IDNumber           string `json:"id_number" binding:"required,max=50"`
	RegionID           *int64 `json:"region_id"`
	Address            string `json:"address"`
	CurrentActivity    string `json:"current_activity" binding:"max=200"`
	ExperienceYears    int    `json:"experience_years" binding:"gte=0,lte=50"`
	NetworkStrength    string `json:"network_strength" binding:"omitempty,oneof=weak medium strong very_strong"`
	NetworkDescription string `json:"network_description"`
	SectorsKnowledge   string `json:"sectors_knowledge"`
	Motivation         string `json:"motivation"`
	Availability       string `json:"availability" binding:"omitempty,oneof=full_time part_time flexible"`
	References         string `json:"references"`
}

// Apply stores a candidate's application and alerts staff.
func (s *Service) Apply(ctx context.Context, req ApplicationRequest) (*Application, error) {
	if req.RegionID != nil {
		if _, err := s.repo.GetRegion(ctx, *req.RegionID); err != nil {
			return nil, err
		}
	}
	a := &Application{
		FullName:           strings.TrimSpace(req.FullName),
		Phone:              strings.TrimSpace(req.Phone),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		WhatsApp:           req.WhatsApp,
		IDType:             defaultString(req.IDType, "cnib"),
		IDNumber:           strings.TrimSpace(req.IDNumber),
		RegionID:           req.RegionID,
		Address:            req.Address,
		CurrentActivity:    req.CurrentActivity,
		ExperienceYears:    req.ExperienceYears,
		NetworkStrength:    defaultString(req.NetworkStrength, "medium"),
		NetworkDescription: req.NetworkDescription,
		SectorsKnowledge:   req.SectorsKnowledge,
		Motivation:         req.Motivation,
		Availability:       defaultString(req.Availability, "flexible"),
		References:         req.References,
		Status:             ApplicationPending,
	}
	if err := s.repo.CreateApplication(ctx, a); err != nil {
		return nil, err
	}
	log.Printf("partner_application_created id=%d", a.ID)
	s.notifyStaff(ctx, nil, notification.Input{
		Type:    notification.TypeGeneral,
		Title:   "New partner application",
		Message: fmt.Sprintf("%s applied to the partner program", a.FullName),
		Target:  notification.ApplicationTarget(a.ID),
		Link:    fmt.Sprintf("/admin/partners/applications/%d", a.ID),
	})
	return a, nil
}

func (s *Service) ListApplications(ctx context.Context, status ApplicationStatus, page, pageSize int) ([]Application, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.ListApplications(ctx, status, pageSize, (page-1)*pageSize)
}

// SetApplicationStatus moves an application through the review stages.
// Approval and rejection have their own operations.
func (s *Service) SetApplicationStatus(ctx context.Context, id, adminID int64, status ApplicationStatus, notes string) (*Application, error) {
	if status != ApplicationReviewing && status != ApplicationInterview && status != ApplicationPending {
		return nil, ErrInvalidStatus
	}
	a, err := s.repo.GetApplication(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if a.Status == ApplicationApproved {
		return nil, ErrInvalidStatus
	}
	a.Status = status
	a.InternalNotes = appendNote(a.InternalNotes, notes)
	now := s.now().UTC()
	a.ReviewedAt, a.ReviewedByID = &now, &adminID
	if err := s.repo.SaveApplication(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

type Activation struct {
	Partner *Partner      `json:"partner"`
	User    *account.User `json:"user"`
}

// Approve activates an application: it creates the partner's user account
// and partner profile in one transaction, then emails the credentials.
// Approving an already activated application returns the existing partner.
func (s *Service) Approve(ctx context.Context, id, adminID int64) (*Activation, error) {
	var (
		act      Activation
		password string
		existed  bool
		app      *Application
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		app, err = repo.GetApplication(ctx, id, true)
		if err != nil {
			return err
		}
		if p, err := repo.GetPartnerByApplication(ctx, id); err == nil {
			act.Partner, existed = p, true
			return nil
		} else if !errors.Is(err, ErrPartnerNotFound) {
			return err
		}
		if app.Email == "" {
			return ErrMissingEmail
		}

		password, err = account.GeneratePassword(generatedPasswordLen)
		if err != nil {
			return err
		}
		first, last := splitName(app.FullName)
		act.User, err = account.CreateUserWith(ctx, account.NewRepository(tx), account.NewUser{
			Email:     app.Email,
			Password:  password,
			FirstName: first,
			LastName:  last,
			Phone:     app.Phone,
			Role:      account.RoleClient,
		})
		if err != nil {
			return err
		}

		city := "GEN"
		if app.RegionID != nil {
			reg, err := repo.GetRegion(ctx, *app.RegionID)
			if err != nil {
				return err
			}
			city = cityCode(reg.Name)
		}
		code, err := repo.NextCode(ctx, city)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		act.Partner = &Partner{
			ApplicationID:    app.ID,
			UserID:           act.User.ID,
			Code:             code,
			IsActive:         true,
			CommissionRateBP: s.defaultRate,
			ActivatedAt:      now,
		}
		if err := repo.CreatePartner(ctx, act.Partner); err != nil {
			return err
		}

		app.Status = ApplicationApproved
		app.ReviewedAt, app.ReviewedByID = &now, &adminID
		return repo.SaveApplication(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	if existed {
		return &act, nil
	}

	log.Printf("partner_activated id=%d code=%s user_id=%d admin_id=%d", act.Partner.ID, act.Partner.Code, act.User.ID, adminID)
	s.enqueue(ctx, mailer.NewJob(app.Email, "Your Oloustream partner account", mailer.TemplatePartnerActivation, map[string]string{
		"full_name":    app.FullName,
		"partner_code": act.Partner.Code,
		"email":        act.User.Email,
		"password":     password,
	}))
	return &act, nil
}

func (s *Service) Reject(ctx context.Context, id, adminID int64, reason string) (*Application, error) {
	a, err := s.repo.GetApplication(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if a.Status == ApplicationApproved {
		return nil, ErrInvalidStatus
	}
	now := s.now().UTC()
	a.Status = ApplicationRejected
	a.ReviewedAt, a.ReviewedByID = &now, &adminID
	a.InternalNotes = appendNote(a.InternalNotes, reason)
	if err := s.repo.SaveApplication(ctx, a); err != nil {
		return nil, err
	}
	if a.Email != "" {
		s.enqueue(ctx, mailer.NewJob(a.Email, "Your partner application", mailer.TemplatePartnerRejected, map[string]string{
			"full_name": a.FullName,
		}))
	}
	return a, nil
}

/* ---------- contracts ---------- */

type ContractRequest struct {
	ClientName    string     `json:"client_name" binding:"required,max=200"`
	ClientType    ClientType `json:"client_type" binding:"required,oneof=institution ong company individual event"`
	ClientContact string     `json:"client_contact" binding:"max=200"`
	ServiceType   string     `json:"service_type" binding:"max=100"`
	Description   string     `json:"description"`
	Amount        int64      `json:"contract_amount"`
	Draft         bool       `json:"draft"`
}

// SubmitContract records a contract brought in by the partner owning userID.
// The partner's current rate is frozen on the contract.
func (s *Service) SubmitContract(ctx context.Context, userID int64, req ContractRequest) (*Contract, error) {
	p, err := s.repo.GetPartnerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrPartnerInactive
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Amount > MaxContractAmount {
		return nil, ErrAmountTooLarge
	}
	c := &Contract{
		PartnerID:        p.ID,
		ClientName:       strings.TrimSpace(req.ClientName),
		ClientType:       req.ClientType,
		ClientContact:    req.ClientContact,
		ServiceType:      req.ServiceType,
		Description:      req.Description,
		Amount:           req.Amount,
		CommissionRateBP: p.CommissionRateBP,
		Status:           ContractPending,
	}
	if req.Draft {
		c.Status = ContractDraft
	}
	if err := s.repo.CreateContract(ctx, c); err != nil {
		return nil, err
	}
	if c.Status == ContractPending {
		s.notifyStaff(ctx, &userID, notification.Input{
			Type:    notification.TypeGeneral,
			Title:   "Contract awaiting validation",
			Message: fmt.Sprintf("%s submitted a contract with %s", p.Code, c.ClientName),
			Target:  notification.ContractTarget(c.ID),
			Link:    fmt.Sprintf("/admin/partners/contracts/%d", c.ID),
		})
	}
	return c, nil
}

func (s *Service) ListContracts(ctx context.Context, partnerID int64, status ContractStatus, page, pageSize int) ([]Contract, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.ListContracts(ctx, partnerID, status, pageSize, (page-1)*pageSize)
}

func (s *Service) ListMyContracts(ctx context.Context, userID int64, page, pageSize int) ([]Contract, int64, error) {
	p, err := s.repo.GetPartnerByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListContracts(ctx, p.ID, "", pageSize, (page-1)*pageSize)
}

// ValidateContract accepts a pending contract and adds it to the partner's
// totals in the same transaction.
func (s *Service) ValidateContract(ctx context.Context, id, adminID int64) (*Contract, error) {
	var c *Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		c, err = repo.GetContractForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.Status != ContractPending {
			return fmt.Errorf("%w: contract is %s", ErrInvalidStatus, c.Status)
		}

		now := s.now().UTC()
		c.Status = ContractValidated
		c.ValidatedAt, c.ValidatedByID = &now, &adminID
		if err := repo.SaveContract(ctx, c); err != nil {
			return err
		}
		return repo.AddContractTotals(ctx, c.PartnerID, c.Amount, c.CommissionAmount, now)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("contract_validated id=%d partner_id=%d amount=%d commission=%d admin_id=%d",
		c.ID, c.PartnerID, c.Amount, c.CommissionAmount, adminID)
	if p, err := s.repo.GetPartner(ctx, c.PartnerID); err == nil {
		s.notifyPartner(ctx, p, adminID, notification.Input{
			Type:    notification.TypeGeneral,
			Title:   "Contract validated",
			Message: fmt.Sprintf("Your contract with %s was validated. Commission: %s FCFA", c.ClientName, FormatAmount(c.CommissionAmount)),
			Target:  notification.ContractTarget(c.ID),
			Link:    fmt.Sprintf("/partner/contracts/%d", c.ID),
		})
		s.mailPartner(ctx, p, "Contract validated", mailer.TemplateContractValidated, map[string]string{
			"partner_code": p.Code,
			"client_name":  c.ClientName,
			"amount":       FormatAmount(c.Amount),
			"commission":   FormatAmount(c.CommissionAmount),
		})
	}
	return c, nil
}

// RejectContract cancels a draft or pending contract.
func (s *Service) RejectContract(ctx context.Context, id, adminID int64) (*Contract, error) {
	var c *Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		c, err = repo.GetContractForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.Status != ContractPending && c.Status != ContractDraft {
			return fmt.Errorf("%w: contract is %s", ErrInvalidStatus, c.Status)
		}
		c.Status = ContractCancelled
		return repo.SaveContract(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("contract_rejected id=%d admin_id=%d", c.ID, adminID)
	return c, nil
}

var contractProgress = map[ContractStatus]ContractStatus{
	ContractSigned:     ContractValidated,
	ContractInProgress: ContractSigned,
	ContractCompleted:  ContractInProgress,
}

// AdvanceContract moves a counted contract one step along
// validated → signed → in_progress → completed.
func (s *Service) AdvanceContract(ctx context.Context, id int64, status ContractStatus) (*Contract, error) {
	from, ok := contractProgress[status]
	if !ok {
		return nil, ErrInvalidStatus
	}
	var c *Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		c, err = repo.GetContractForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.Status != from {
			return fmt.Errorf("%w: contract is %s", ErrInvalidStatus, c.Status)
		}
		c.Status = status
		if status == ContractCompleted {
			now := s.now().UTC()
			c.CompletedAt = &now
		}
		return repo.SaveContract(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

/* ---------- commissions ---------- */

type PaymentRequest struct {
	Amount      int64         `json:"amount"`
	Method      PaymentMethod `json:"payment_method" binding:"required"`
	Reference   string        `json:"reference" binding:"max=100"`
	Notes       string        `json:"notes"`
	ContractIDs []int64       `json:"contract_ids"`
	PaidAt      *time.Time    `json:"paid_at"`
}

// PayCommission records a payout and raises the partner's paid total.
func (s *Service) PayCommission(ctx context.Context, partnerID, adminID int64, req PaymentRequest) (*CommissionPayment, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidMethod
	}

	var pay *CommissionPayment
	var p *Partner
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		p, err = repo.GetPartnerForUpdate(ctx, partnerID)
		if err != nil {
			return err
		}
		if req.Amount > p.PendingCommission() {
			return fmt.Errorf("%w: pending %d", ErrExceedsPending, p.PendingCommission())
		}

		contracts, err := repo.ContractsByIDs(ctx, uniqueIDs(req.ContractIDs))
		if err != nil {
			return err
		}
		if len(contracts) != len(uniqueIDs(req.ContractIDs)) {
			return ErrContractNotFound
		}
		for _, c := range contracts {
			if c.PartnerID != partnerID || !c.Status.Counted() {
				return fmt.Errorf("%w: contract %d", ErrContractMismatch, c.ID)
			}
		}

		paidAt := s.now().UTC()
		if req.PaidAt != nil {
			paidAt = req.PaidAt.UTC()
		}
		pay = &CommissionPayment{
			PartnerID:   partnerID,
			Amount:      req.Amount,
			Method:      req.Method,
			Reference:   req.Reference,
			Notes:       req.Notes,
			PaidAt:      paidAt,
			CreatedByID: &adminID,
			Contracts:   contracts,
		}
		if err := repo.CreatePayment(ctx, pay); err != nil {
			return err
		}
		return repo.AddCommissionPaid(ctx, partnerID, req.Amount)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("commission_paid payment_id=%d partner_id=%d amount=%d method=%s", pay.ID, partnerID, pay.Amount, pay.Method)
	s.notifyPartner(ctx, p, adminID, notification.Input{
		Type:    notification.TypePaymentStatus,
		Title:   "Commission paid",
		Message: fmt.Sprintf("%s FCFA were paid to you by %s", FormatAmount(pay.Amount), pay.Method),
		Target:  notification.CommissionTarget(pay.ID),
		Link:    "/partner/payments",
	})
	s.mailPartner(ctx, p, "Commission paid", mailer.TemplateCommissionPaid, map[string]string{
		"partner_code": p.Code,
		"amount":       FormatAmount(pay.Amount),
		"method":       string(pay.Method),
		"reference":    pay.Reference,
	})
	return pay, nil
}

func (s *Service) ListPayments(ctx context.Context, partnerID int64) ([]CommissionPayment, error) {
	return s.repo.ListPayments(ctx, partnerID)
}

func (s *Service) ListMyPayments(ctx context.Context, userID int64) ([]CommissionPayment, error) {
	p, err := s.repo.GetPartnerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, p.ID)
}

func (s *Service) Performance(ctx context.Context, partnerID int64) (*Performance, error) {
	if _, err := s.repo.GetPartner(ctx, partnerID); err != nil {
		return nil, err
	}
	return s.repo.Performance(ctx, partnerID)
}

func (s *Service) TopPartners(ctx context.Context, limit int) ([]Partner, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.TopPartners(ctx, limit)
}

type Dashboard struct {
	Partner           *Partner     `json:"partner"`
	Performance       *Performance `json:"performance"`
	PendingCommission int64        `json:"pending_commission"`
	RecentContracts   []Contract   `json:"recent_contracts"`
}

func (s *Service) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	p, err := s.repo.GetPartnerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	perf, err := s.repo.Performance(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.repo.ListContracts(ctx, p.ID, "", 5, 0)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Partner: p, Performance: perf, PendingCommission: p.PendingCommission(), RecentContracts: recent}, nil
}

/* ---------- helpers ---------- */

func (s *Service) notifyStaff(ctx context.Context, actorID *int64, in notification.Input) {
	if s.notifier == nil || s.staff == nil {
		return
	}
	ids, err := s.staff.StaffIDs(ctx)
	if err == nil {
		in.ActorID = actorID
		_, err = s.notifier.NotifyMany(ctx, ids, in)
	}
	if err != nil {
		log.Printf("partner_notify_failed target=%s/%d err=%v", in.Target.Kind, in.Target.ID, err)
	}
}

func (s *Service) notifyPartner(ctx context.Context, p *Partner, actorID int64, in notification.Input) {
	if s.notifier == nil {
		return
	}
	in.UserID, in.ActorID = p.UserID, &actorID
	if _, err := s.notifier.Notify(ctx, in); err != nil {
		log.Printf("partner_notify_failed partner_id=%d err=%v", p.ID, err)
	}
}

func (s *Service) enqueue(ctx context.Context, job mailer.Job) {
	if s.mail == nil {
		return
	}
	if err := s.mail.Enqueue(ctx, job); err != nil {
		log.Printf("partner_mail_failed job_id=%s template=%s err=%v", job.ID, job.Template, err)
	}
}

// mailPartner sends to the address given on the partner's application.
func (s *Service) mailPartner(ctx context.Context, p *Partner, subject string, tpl mailer.Template, data map[string]string) {
	app, err := s.repo.GetApplication(ctx, p.ApplicationID, false)
	if err != nil || app.Email == "" {
		return
	}
	s.enqueue(ctx, mailer.NewJob(app.Email, subject, tpl, data))
}

var codeChars = strings.NewReplacer("-", "", "_", "")

// cityCode turns a region name into the 4-letter code used in partner codes.
func cityCode(name string) string {
	slug := codeChars.Replace(catalog.Slugify(name))
	if slug == "" {
		return "GEN"
	}
	if len(slug) > 4 {
		slug = slug[:4]
	}
	return strings.ToUpper(slug)
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

var fcfa = message.NewPrinter(language.French)

// FormatAmount renders centimes as whole FCFA grouped by thousands,
// e.g. 20000000 → "200 000".
func FormatAmount(centimes int64) string {
	sign := ""
	if centimes < 0 {
		sign, centimes = "-", -centimes
	}
	grouped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, fcfa.Sprintf("%d", centimes/100))
	return sign + grouped
}
