package offer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"oloustream/internal/domain/catalog"
	"oloustream/internal/domain/notification"
	"oloustream/internal/mailer"
)

type Service struct {
	db       *gorm.DB
	repo     *Repository
	services ServiceReader
	notifier Notifier
	staff    StaffDirectory
	mail     mailer.Enqueuer
	now      func() time.Time
}

func NewService(db *gorm.DB, services ServiceReader, notifier Notifier, staff StaffDirectory, mail mailer.Enqueuer) *Service {
	return &Service{
		db:       db,
		repo:     NewRepository(db),
		services: services,
		notifier: notifier,
		staff:    staff,
		mail:     mail,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

/* ---------- promotions ---------- */

type OfferRequest struct {
	ServiceID       int64     `json:"service_id" binding:"required"`
	Title           string    `json:"title" binding:"required,max=150"`
	Description     string    `json:"description"`
	DiscountPercent int       `json:"discount_percent" binding:"min=0,max=100"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required"`
	IsActive        *bool     `json:"is_active"`
}

func (s *Service) CreateOffer(ctx context.Context, req OfferRequest) (*Offer, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidInput)
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidInput)
	}
	if truncateDay(req.EndDate).Before(truncateDay(req.StartDate)) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	if _, err := s.services.GetService(ctx, req.ServiceID); err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	o := &Offer{
		ServiceID:       req.ServiceID,
		Title:           title,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		StartDate:       truncateDay(req.StartDate),
		EndDate:         truncateDay(req.EndDate),
		IsActive:        true,
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	if err := s.repo.CreateOffer(ctx, o); err != nil {
		return nil, err
	}
	log.Printf("offer_created id=%d service_id=%d discount=%d", o.ID, o.ServiceID, o.DiscountPercent)
	return o, nil
}

// ListOffers returns the offers open today, or every offer for staff.
func (s *Service) ListOffers(ctx context.Context, openOnly bool) ([]Offer, error) {
	list, err := s.repo.ListOffers(ctx, openOnly)
	if err != nil || !openOnly {
		return list, err
	}
	today := s.now()
	open := make([]Offer, 0, len(list))
	for _, o := range list {
		if o.Open(today) {
			open = append(open, o)
		}
	}
	return open, nil
}

type ApplyOfferRequest struct {
	Message string `json:"message" binding:"max=2000"`
}

// ApplyOffer records userID's interest in an open offer.
func (s *Service) ApplyOffer(ctx context.Context, userID, offerID int64, req ApplyOfferRequest) (*OfferApplication, error) {
	o, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !o.Open(s.now()) {
		return nil, ErrOfferClosed
	}
	exists, err := s.repo.OfferApplicationExists(ctx, userID, offerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	a := &OfferApplication{UserID: userID, OfferID: offerID, Message: req.Message, Status: StatusPending}
	if err := s.repo.CreateOfferApplication(ctx, a); err != nil {
		return nil, err
	}
	a.Offer = o
	log.Printf("offer_application_created id=%d offer_id=%d user_id=%d", a.ID, offerID, userID)

	s.notifyStaff(ctx, userID, notification.Input{
		Type:    notification.TypeGeneral,
		Title:   "New offer application",
		Message: fmt.Sprintf("New application for %s", o.Title),
		Target:  notification.OfferAppTarget(a.ID),
		Link:    fmt.Sprintf("/admin/offers/%d/applications", o.ID),
	})
	return a, nil
}

func (s *Service) MyOfferApplications(ctx context.Context, userID int64) ([]OfferApplication, error) {
	return s.repo.OfferApplicationsByUser(ctx, userID)
}

func (s *Service) OfferApplications(ctx context.Context, offerID int64, status ApplicationStatus, page, pageSize int) ([]OfferApplication, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if _, err := s.repo.GetOffer(ctx, offerID); err != nil {
		return nil, 0, err
	}
	return s.repo.OfferApplicationsByOffer(ctx, offerID, status, pageSize, (page-1)*pageSize)
}

type DecisionRequest struct {
	Status       ApplicationStatus `json:"status" binding:"required"`
	InternalNote *string           `json:"internal_note"`
}

// DecideOfferApplication accepts or rejects an application. Repeating the
// current decision changes nothing and notifies nobody.
func (s *Service) DecideOfferApplication(ctx context.Context, id, adminID int64, status ApplicationStatus) (*OfferApplication, error) {
	if !status.Decision() {
		return nil, ErrInvalidStatus
	}

	var (
		a       *OfferApplication
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		a, err = repo.GetOfferApplicationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a.Status == status {
			return nil
		}
		now := s.now()
		a.Status = status
		a.DecidedByID, a.DecidedAt = &adminID, &now
		changed = true
		return repo.SaveOfferApplication(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	o, err := s.repo.GetOffer(ctx, a.OfferID)
	if err != nil {
		return nil, err
	}
	a.Offer = o

	if changed {
		log.Printf("offer_application_decided id=%d status=%s admin_id=%d", a.ID, a.Status, adminID)
		s.notifyUser(ctx, a.UserID, adminID, notification.Input{
			Type:    notification.TypeGeneral,
			Title:   "Offer application",
			Message: fmt.Sprintf("Your application for %s is %s", o.Title, strings.ToLower(string(a.Status))),
			Target:  notification.OfferAppTarget(a.ID),
			Link:    "/offers/applications",
		})
	}
	return a, nil
}

/* ---------- jobs ---------- */

type JobRequest struct {
	Type             JobType    `json:"offer_type"`
	Title            string     `json:"title" binding:"required,max=200"`
	Department       string     `json:"department" binding:"max=120"`
	Location         string     `json:"location" binding:"max=120"`
	ContractType     string     `json:"contract_type" binding:"max=20"`
	EducationLevel   string     `json:"level" binding:"max=20"`
	Summary          string     `json:"summary" binding:"max=255"`
	Description      string     `json:"description"`
	Responsibilities string     `json:"responsibilities"`
	Requirements     string     `json:"requirements"`
	Benefits         string     `json:"benefits"`
	Deadline         *time.Time `json:"deadline"`
	Publish          bool       `json:"publish"`
}

// CreateJob stores a posting as a draft unless Publish is set. The slug is
// derived from the title and made unique.
func (s *Service) CreateJob(ctx context.Context, req JobRequest) (*JobOffer, error) {
	if req.Type == "" {
		req.Type = JobEmployment
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown offer type", ErrInvalidInput)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidInput)
	}

	slug, err := catalog.UniqueSlug(ctx, title, "offre", s.repo.JobSlugTaken)
	if err != nil {
		return nil, err
	}
	j := &JobOffer{
		Status:           JobDraft,
		Type:             req.Type,
		Title:            title,
		Slug:             slug,
		Department:       req.Department,
		Location:         req.Location,
		ContractType:     req.ContractType,
		EducationLevel:   req.EducationLevel,
		Summary:          req.Summary,
		Description:      req.Description,
		Responsibilities: req.Responsibilities,
		Requirements:     req.Requirements,
		Benefits:         req.Benefits,
		Deadline:         req.Deadline,
	}
	if req.Publish {
		j.Status = JobPublished
	}
	if err := s.repo.CreateJob(ctx, j); err != nil {
		return nil, err
	}
	log.Printf("job_offer_created id=%d slug=%s status=%s", j.ID, j.Slug, j.Status)
	return j, nil
}

func (s *Service) SetJobStatus(ctx context.Context, id int64, status JobStatus) (*JobOffer, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	j, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status == status {
		return j, nil
	}
	j.Status = status
	if err := s.repo.SaveJob(ctx, j); err != nil {
		return nil, err
	}
	log.Printf("job_offer_status id=%d status=%s", j.ID, j.Status)
	return j, nil
}

// ListJobs returns published postings for the public and every posting,
// filtered by status, for staff.
func (s *Service) ListJobs(ctx context.Context, public bool, status JobStatus, jobType JobType) ([]JobOffer, error) {
	if public {
		status = JobPublished
	}
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if jobType != "" && !jobType.Valid() {
		return nil, fmt.Errorf("%w: unknown offer type", ErrInvalidInput)
	}
	return s.repo.ListJobs(ctx, status, jobType)
}

// GetJobBySlug hides unpublished postings from the public.
func (s *Service) GetJobBySlug(ctx context.Context, slug string, public bool) (*JobOffer, error) {
	j, err := s.repo.GetJobBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if public && j.Status != JobPublished {
		return nil, ErrJobNotFound
	}
	return j, nil
}

type ApplyJobRequest struct {
	FullName     string `json:"full_name" binding:"required,max=150"`
	Email        string `json:"email" binding:"required,email,max=255"`
	Phone        string `json:"phone" binding:"max=50"`
	CoverLetter  string `json:"cover_letter"`
	PortfolioURL string `json:"portfolio_url" binding:"omitempty,url,max=255"`
}

// ApplyJob files userID's application on a published posting whose deadline
// has not passed.
func (s *Service) ApplyJob(ctx context.Context, userID int64, slug string, req ApplyJobRequest) (*JobApplication, error) {
	j, err := s.GetJobBySlug(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	if !j.Open(s.now()) {
		return nil, ErrOfferClosed
	}
	name, email := strings.TrimSpace(req.FullName), strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: full name and email are required", ErrInvalidInput)
	}
	exists, err := s.repo.JobApplicationExists(ctx, userID, j.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	a := &JobApplication{
		OfferID:      j.ID,
		UserID:       userID,
		FullName:     name,
		Email:        email,
		Phone:        req.Phone,
		CoverLetter:  req.CoverLetter,
		PortfolioURL: req.PortfolioURL,
		Status:       StatusPending,
	}
	if err := s.repo.CreateJobApplication(ctx, a); err != nil {
		return nil, err
	}
	a.Offer = j
	log.Printf("job_application_created id=%d offer_id=%d user_id=%d", a.ID, j.ID, userID)

	s.notifyStaff(ctx, userID, notification.Input{
		Type:    notification.TypeGeneral,
		Title:   "New job application",
		Message: fmt.Sprintf("%s applied for %s", name, j.Title),
		Target:  notification.JobAppTarget(a.ID),
		Link:    fmt.Sprintf("/admin/jobs/%d/applications", j.ID),
	})
	return a, nil
}

func (s *Service) MyJobApplications(ctx context.Context, userID int64) ([]JobApplication, error) {
	return s.repo.JobApplicationsByUser(ctx, userID)
}

func (s *Service) JobApplications(ctx context.Context, jobID int64, status ApplicationStatus, page, pageSize int) ([]JobApplication, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if _, err := s.repo.GetJob(ctx, jobID); err != nil {
		return nil, 0, err
	}
	return s.repo.JobApplicationsByOffer(ctx, jobID, status, pageSize, (page-1)*pageSize)
}

// DecideJobApplication records the staff decision and an optional internal
// note. The applicant is notified and mailed only when the status changes.
func (s *Service) DecideJobApplication(ctx context.Context, id, adminID int64, req DecisionRequest) (*JobApplication, error) {
	if !req.Status.Decision() {
		return nil, ErrInvalidStatus
	}

	var (
		a       *JobApplication
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		a, err = repo.GetJobApplicationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		dirty := false
		if req.InternalNote != nil && *req.InternalNote != a.InternalNote {
			a.InternalNote = *req.InternalNote
			dirty = true
		}
		if a.Status != req.Status {
			now := s.now()
			a.Status = req.Status
			a.DecidedByID, a.DecidedAt = &adminID, &now
			changed, dirty = true, true
		}
		if !dirty {
			return nil
		}
		return repo.SaveJobApplication(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	j, err := s.repo.GetJob(ctx, a.OfferID)
	if err != nil {
		return nil, err
	}
	a.Offer = j

	if changed {
		log.Printf("job_application_decided id=%d status=%s admin_id=%d", a.ID, a.Status, adminID)
		s.notifyUser(ctx, a.UserID, adminID, notification.Input{
			Type:    notification.TypeGeneral,
			Title:   "Job application",
			Message: fmt.Sprintf("Your application for %s is %s", j.Title, strings.ToLower(string(a.Status))),
			Target:  notification.JobAppTarget(a.ID),
			Link:    "/jobs/applications",
		})
		s.enqueue(ctx, mailer.NewJob(a.Email, "Your application: "+j.Title, mailer.TemplateJobDecision, map[string]string{
			"full_name": a.FullName,
			"job_title": j.Title,
			"status":    string(a.Status),
		}))
	}
	return a, nil
}

func (s *Service) enqueue(ctx context.Context, job mailer.Job) {
	if s.mail == nil {
		return
	}
	if err := s.mail.Enqueue(ctx, job); err != nil {
		log.Printf("offer_mail_failed template=%s err=%v", job.Template, err)
	}
}

func (s *Service) notifyStaff(ctx context.Context, actorID int64, in notification.Input) {
	if s.notifier == nil || s.staff == nil {
		return
	}
	ids, err := s.staff.StaffIDs(ctx)
	if err != nil {
		log.Printf("offer_notify_failed err=%v", err)
		return
	}
	in.ActorID = &actorID
	if _, err := s.notifier.NotifyMany(ctx, ids, in); err != nil {
		log.Printf("offer_notify_failed err=%v", err)
	}
}

func (s *Service) notifyUser(ctx context.Context, userID, actorID int64, in notification.Input) {
	if s.notifier == nil {
		return
	}
	in.UserID, in.ActorID = userID, &actorID
	if _, err := s.notifier.Notify(ctx, in); err != nil {
		log.Printf("offer_notify_failed user_id=%d err=%v", userID, err)
	}
}
