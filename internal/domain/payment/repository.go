package payment

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

func (r *Repository) Create(ctx context.Context, p *Payment) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if database.IsUniqueViolation(err) {
		return ErrDuplicateReference
	}
	return err
}

func (r *Repository) get(ctx context.Context, id int64, lock bool) (*Payment, error) {
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p Payment
	err := q.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Payment, error) {
	return r.get(ctx, id, false)
}

func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Payment, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) Save(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

type Filters struct {
	UserID        int64
	ReservationID int64
	Status        Status
}

func (r *Repository) List(ctx context.Context, f Filters, limit, offset int) ([]Payment, int64, error) {
	q := r.db.WithContext(ctx).Model(&Payment{})
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ReservationID > 0 {
		q = q.Where("reservation_id = ?", f.ReservationID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Payment
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
