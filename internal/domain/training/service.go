package training

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"oloustream/internal/domain/catalog"
	"oloustream/internal/domain/notification"
)

type Service struct {
	db       *gorm.DB
	repo     *Repository
	notifier Notifier
	staff    StaffDirectory
	now      func() time.Time
}

func NewService(db *gorm.DB, notifier Notifier, staff StaffDirectory) *Service {
	return &Service{
		db:       db,
		repo:     NewRepository(db),
		notifier: notifier,
		staff:    staff,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=150"`
	Description string `json:"description"`
	Icon        string `json:"icon" binding:"max=100"`
}

func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error) {
	c := &Category{Name: strings.TrimSpace(req.Name), Description: req.Description, Icon: req.Icon}
	if c.Name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidInput)
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

type TrainingRequest struct {
	Title            string     `json:"title" binding:"required,max=200"`
	ShortDescription string     `json:"short_description" binding:"max=255"`
	Description      string     `json:"description"`
	CategoryID       *int64     `json:"category_id"`
	Level            Level      `json:"level"`
	Mode             Mode       `json:"mode"`
	Location         string     `json:"location" binding:"max=255"`
	Objectives       string     `json:"objectives"`
	Prerequisites    string     `json:"prerequisites"`
	TargetAudience   string     `json:"target_audience"`
	Program          string     `json:"program"`
	DurationHours    *int       `json:"duration_hours" binding:"omitempty,min=1"`
	Price            *int64     `json:"price" binding:"omitempty,min=0"`
	Certification    bool       `json:"certification"`
	MaxSeats         *int       `json:"max_seats" binding:"omitempty,min=1"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Schedule         string     `json:"schedule"`
	IsActive         *bool      `json:"is_active"`
}

func (s *Service) apply(ctx context.Context, req TrainingRequest, t *Training) error {
	if req.Level == "" {
		req.Level = LevelAll
	}
	if req.Mode == "" {
		req.Mode = ModeOnsite
	}
	if !req.Level.Valid() || !req.Mode.Valid() {
		return fmt.Errorf("%w: unknown level or mode", ErrInvalidInput)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	if req.CategoryID != nil {
		ok, err := s.repo.CategoryExists(ctx, *req.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCategoryNotFound
		}
	}

	t.Title = strings.TrimSpace(req.Title)
	t.ShortDescription = req.ShortDescription
	t.Description = req.Description
	t.CategoryID = req.CategoryID
	t.Level, t.Mode = req.Level, req.Mode
	t.Location = req.Location
	t.Objectives, t.Prerequisites = req.Objectives, req.Prerequisites
	t.TargetAudience, t.Program = req.TargetAudience, req.Program
	t.DurationHours, t.Price = req.DurationHours, req.Price
	t.Certification = req.Certification
	t.MaxSeats = req.MaxSeats
	t.StartDate, t.EndDate = req.StartDate, req.EndDate
	t.Schedule = req.Schedule
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	return nil
}

func (s *Service) CreateTraining(ctx context.Context, req TrainingRequest) (*Training, error) {
	t := &Training{IsActive: true}
	if err := s.apply(ctx, req, t); err != nil {
		return nil, err
	}
	slug, err := catalog.UniqueSlug(ctx, t.Title, "formation", s.repo.SlugTaken)
	if err != nil {
		return nil, err
	}
	t.Slug = slug
	if err := s.repo.CreateTraining(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) UpdateTraining(ctx context.Context, id int64, req TrainingRequest) (*Training, error) {
	t, err := s.repo.GetTraining(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, req, t); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTraining(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.GetTraining(ctx, id)
}

func (s *Service) ListTrainings(ctx context.Context, activeOnly bool, categoryID int64) ([]Training, error) {
	return s.repo.ListTrainings(ctx, activeOnly, categoryID)
}

// GetTraining hides inactive trainings unless includeInactive is set.
func (s *Service) GetTraining(ctx context.Context, id int64, includeInactive bool) (*Training, error) {
	t, err := s.repo.GetTraining(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive && !includeInactive {
		return nil, ErrTrainingNotFound
	}
	return t, nil
}

// Enroll registers userID on an active training in PENDING state.
func (s *Service) Enroll(ctx context.Context, userID, trainingID int64) (*Enrollment, error) {
	t, err := s.GetTraining(ctx, trainingID, false)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.EnrollmentExists(ctx, userID, trainingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyEnrolled
	}

	e := &Enrollment{UserID: userID, TrainingID: trainingID, Status: EnrollmentPending}
	if err := s.repo.CreateEnrollment(ctx, e); err != nil {
		return nil, err
	}
	e.Training = t
	log.Printf("training_enrollment_created id=%d training_id=%d user_id=%d", e.ID, trainingID, userID)

	s.notifyStaff(ctx, userID, notification.Input{
		Type:    notification.TypeGeneral,
		Title:   "New training enrollment",
		Message: fmt.Sprintf("New enrollment for %s", t.Title),
		Target:  notification.EnrollmentTarget(e.ID),
		Link:    fmt.Sprintf("/admin/trainings/%d/enrollments", t.ID),
	})
	return e, nil
}

func (s *Service) MyEnrollments(ctx context.Context, userID int64) ([]Enrollment, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Enrollments(ctx context.Context, trainingID int64, status EnrollmentStatus, page, pageSize int) ([]Enrollment, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if _, err := s.repo.GetTraining(ctx, trainingID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByTraining(ctx, trainingID, status, pageSize, (page-1)*pageSize)
}

type DecisionRequest struct {
	Status EnrollmentStatus `json:"status" binding:"required"`
}

// Decide accepts or rejects an enrollment. Repeating the current decision is
// a no-op. Accepting checks the seat limit under a lock on the training.
func (s *Service) Decide(ctx context.Context, id, adminID int64, status EnrollmentStatus) (*Enrollment, error) {
	if status != EnrollmentAccepted && status != EnrollmentRejected {
		return nil, ErrInvalidStatus
	}

	var (
		e       *Enrollment
		t       *Training
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		e, err = repo.GetEnrollmentForUpdate(ctx, id)
		if err != nil {
			return err
		}
		t, err = repo.GetTrainingForUpdate(ctx, e.TrainingID)
		if err != nil {
			return err
		}
		if e.Status == status {
			return nil
		}
		if status == EnrollmentAccepted && t.MaxSeats != nil {
			accepted, err := repo.CountAccepted(ctx, t.ID)
			if err != nil {
				return err
			}
			if accepted >= int64(*t.MaxSeats) {
				return ErrTrainingFull
			}
		}

		now := s.now()
		e.Status = status
		e.DecidedByID, e.DecidedAt = &adminID, &now
		changed = true
		return repo.SaveEnrollment(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	e.Training = t

	if changed {
		log.Printf("training_enrollment_decided id=%d status=%s admin_id=%d", e.ID, e.Status, adminID)
		s.notifyUser(ctx, e.UserID, adminID, notification.Input{
			Type:    notification.TypeGeneral,
			Title:   "Training enrollment",
			Message: fmt.Sprintf("Your enrollment for %s is %s", t.Title, strings.ToLower(string(e.Status))),
			Target:  notification.EnrollmentTarget(e.ID),
			Link:    "/trainings/enrollments",
		})
	}
	return e, nil
}

func (s *Service) notifyStaff(ctx context.Context, actorID int64, in notification.Input) {
	if s.notifier == nil || s.staff == nil {
		return
	}
	ids, err := s.staff.StaffIDs(ctx)
	if err != nil {
		log.Printf("training_notify_failed err=%v", err)
		return
	}
	in.ActorID = &actorID
	if _, err := s.notifier.NotifyMany(ctx, ids, in); err != nil {
		log.Printf("training_notify_failed err=%v", err)
	}
}

func (s *Service) notifyUser(ctx context.Context, userID, actorID int64, in notification.Input) {
	if s.notifier == nil {
		return
	}
	in.UserID, in.ActorID = userID, &actorID
	if _, err := s.notifier.Notify(ctx, in); err != nil {
		log.Printf("training_notify_failed user_id=%d err=%v", userID, err)
	}
}
