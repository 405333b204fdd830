package offer

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

/* ---------- promotions ---------- */

func (r *Repository) CreateOffer(ctx context.Context, o *Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *Repository) GetOffer(ctx context.Context, id int64) (*Offer, error) {
	var o Offer
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err, ErrOfferNotFound)
	}
	return &o, nil
}

func (r *Repository) ListOffers(ctx context.Context, activeOnly bool) ([]Offer, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var list []Offer
	err := q.Order("start_date DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *Repository) CreateOfferApplication(ctx context.Context, a *OfferApplication) error {
	err := r.db.WithContext(ctx).Omit("Offer").Create(a).Error
	if database.IsUniqueViolation(err) {
		return ErrAlreadyApplied
	}
	return err
}

func (r *Repository) OfferApplicationExists(ctx context.Context, userID, offerID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&OfferApplication{}).
		Where("user_id = ? AND offer_id = ?", userID, offerID).Count(&n).Error
	return n > 0, err
}

func (r *Repository) GetOfferApplicationForUpdate(ctx context.Context, id int64) (*OfferApplication, error) {
	var a OfferApplication
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
	if err != nil {
		return nil, notFound(err, ErrApplicationNotFound)
	}
	return &a, nil
}

func (r *Repository) SaveOfferApplication(ctx context.Context, a *OfferApplication) error {
	return r.db.WithContext(ctx).Omit("Offer").Save(a).Error
}

func (r *Repository) OfferApplicationsByUser(ctx context.Context, userID int64) ([]OfferApplication, error) {
	var list []OfferApplication
	err := r.db.WithContext(ctx).Preload("Offer").
		Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *Repository) OfferApplicationsByOffer(ctx context.Context, offerID int64, status ApplicationStatus, limit, offset int) ([]OfferApplication, int64, error) {
	q := r.db.WithContext(ctx).Model(&OfferApplication{}).Where("offer_id = ?", offerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []OfferApplication
	err := q.Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

/* ---------- jobs ---------- */

func (r *Repository) CreateJob(ctx context.Context, j *JobOffer) error {
	err := r.db.WithContext(ctx).Create(j).Error
	if database.IsUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

func (r *Repository) SaveJob(ctx context.Context, j *JobOffer) error {
	return r.db.WithContext(ctx).Save(j).Error
}

func (r *Repository) GetJob(ctx context.Context, id int64) (*JobOffer, error) {
	var j JobOffer
	if err := r.db.WithContext(ctx).First(&j, id).Error; err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}
	return &j, nil
}

func (r *Repository) GetJobBySlug(ctx context.Context, slug string) (*JobOffer, error) {
	var j JobOffer
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&j).Error; err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}
	return &j, nil
}

func (r *Repository) ListJobs(ctx context.Context, status JobStatus, jobType JobType) ([]JobOffer, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if jobType != "" {
		q = q.Where("offer_type = ?", jobType)
	}
	var list []JobOffer
	err := q.Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *Repository) JobSlugTaken(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&JobOffer{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *Repository) CreateJobApplication(ctx context.Context, a *JobApplication) error {
	err := r.db.WithContext(ctx).Omit("Offer").Create(a).Error
	if database.IsUniqueViolation(err) {
		return ErrAlreadyApplied
	}
	return err
}

func (r *Repository) JobApplicationExists(ctx context.Context, userID, offerID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&JobApplication{}).
		Where("user_id = ? AND offer_id = ?", userID, offerID).Count(&n).Error
	return n > 0, err
}

func (r *Repository) GetJobApplicationForUpdate(ctx context.Context, id int64) (*JobApplication, error) {
	var a JobApplication
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
	if err != nil {
		return nil, notFound(err, ErrApplicationNotFound)
	}
	return &a, nil
}

func (r *Repository) SaveJobApplication(ctx context.Context, a *JobApplication) error {
	return r.db.WithContext(ctx).Omit("Offer").Save(a).Error
}

func (r *Repository) JobApplicationsByUser(ctx context.Context, userID int64) ([]JobApplication, error) {
	var list []JobApplication
	err := r.db.WithContext(ctx).Preload("Offer").
		Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

func (r *Repository) JobApplicationsByOffer(ctx context.Context, offerID int64, status ApplicationStatus, limit, offset int) ([]JobApplication, int64, error) {
	q := r.db.WithContext(ctx).Model(&JobApplication{}).Where("offer_id = ?", offerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []JobApplication
	err := q.Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
