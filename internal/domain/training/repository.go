package training

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oloustream/internal/database"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (r *Repository) CreateCategory(ctx context.Context, c *Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	var list []Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *Repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *Repository) CreateTraining(ctx context.Context, t *Training) error {
	err := r.db.WithContext(ctx).Omit("Category").Create(t).Error
	if database.IsUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

func (r *Repository) SaveTraining(ctx context.Context, t *Training) error {
	err := r.db.WithContext(ctx).Omit("Category").Save(t).Error
	if database.IsUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

func (r *Repository) GetTraining(ctx context.Context, id int64) (*Training, error) {
	var t Training
	if err := r.db.WithContext(ctx).Preload("Category").First(&t, id).Error; err != nil {
		return nil, notFound(err, ErrTrainingNotFound)
	}
	return &t, nil
}

// GetTrainingForUpdate locks the training row so seat counting and the
// accept that follows are serialised.
func (r *Repository) GetTrainingForUpdate(ctx context.Context, id int64) (*Training, error) {
	var t Training
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if err != nil {
		return nil, notFound(err, ErrTrainingNotFound)
	}
	return &t, nil
}

func (r *Repository) ListTrainings(ctx context.Context, activeOnly bool, categoryID int64) ([]Training, error) {
	q := r.db.WithContext(ctx).Preload("Category")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	var list []Training
	err := q.Order("title ASC").Find(&list).Error
	return list, err
}

func (r *Repository) CreateEnrollment(ctx context.Context, e *Enrollment) error {
	err := r.db.WithContext(ctx).Omit("Training").Create(e).Error
	if database.IsUniqueViolation(err) {
		return ErrAlreadyEnrolled
	}
	return err
}

func (r *Repository) EnrollmentExists(ctx context.Context, userID, trainingID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Enrollment{}).
		Where("user_id = ? AND training_id = ?", userID, trainingID).Count(&n).Error
	return n > 0, err
}

func (r *Repository) GetEnrollmentForUpdate(ctx context.Context, id int64) (*Enrollment, error) {
	var e Enrollment
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&e, id).Error
	if err != nil {
		return nil, notFound(err, ErrEnrollmentNotFound)
	}
	return &e, nil
}

func (r *Repository) SaveEnrollment(ctx context.Context, e *Enrollment) error {
	return r.db.WithContext(ctx).Omit("Training").Save(e).Error
}

func (r *Repository) CountAccepted(ctx context.Context, trainingID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Enrollment{}).
		Where("training_id = ? AND status = ?", trainingID, EnrollmentAccepted).Count(&n).Error
	return n, err
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Enrollment, error) {
	var list []Enrollment
	err := r.db.WithContext(ctx).Preload("Training").
		Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *Repository) ListByTraining(ctx context.Context, trainingID int64, status EnrollmentStatus, limit, offset int) ([]Enrollment, int64, error) {
	q := r.db.WithContext(ctx).Model(&Enrollment{}).Where("training_id = ?", trainingID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Enrollment
	err := q.Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *Repository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Training{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}
