package account

import (
	"context"
	"errors"
	"time"

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

// WithTx returns a repository bound to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Transaction runs fn against a repository bound to one transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// StaffIDs returns the ids of active back-office users.
func (r *Repository) StaffIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Where("role IN ? AND is_active = ?", StaffRoles, true).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *Repository) RecordLoginFailure(ctx context.Context, id int64, lockAfter int, lockUntil time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, id).Error; err != nil {
			return err
		}
		updates := map[string]any{"failed_login_attempts": gorm.Expr("failed_login_attempts + 1")}
		if u.FailedLoginAttempts+1 >= lockAfter {
			updates["locked_until"] = lockUntil
			updates["failed_login_attempts"] = 0
		}
		return tx.Model(&User{}).Where("id = ?", id).Updates(updates).Error
	})
}

func (r *Repository) RecordLoginSuccess(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         at,
	}).Error
}

func (r *Repository) UpdateRole(ctx context.Context, id int64, role Role, isEmployee bool) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"role":        role,
		"is_employee": isEmployee,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p *EmployeeProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"position", "gender", "birth_date", "address", "city", "salary",
			"contract_type", "hire_date", "contract_end_date", "manager_id", "updated_at",
		}),
	}).Create(p).Error
}

func (r *Repository) GetProfile(ctx context.Context, userID int64) (*EmployeeProfile, error) {
	var p EmployeeProfile
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListEmployees(ctx context.Context, limit, offset int) ([]EmployeeProfile, int64, error) {
	q := r.db.WithContext(ctx).Model(&EmployeeProfile{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []EmployeeProfile
	err := q.Preload("User").Order("id").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
