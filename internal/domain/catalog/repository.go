package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"oloustream/internal/database"
)

type StudioFilters struct {
	City   string
	Type   StudioType
	Search string
	Active *bool
}

type EquipmentFilters struct {
	CategoryID *int64
	Status     EquipmentStatus
	RentOnly   bool
	Search     string
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListStudios(ctx context.Context, f StudioFilters) ([]Studio, error) {
	q := r.db.WithContext(ctx).Model(&Studio{})
	if f.City != "" {
		q = q.Where("LOWER(city) = LOWER(?)", f.City)
	}
	if f.Type != "" {
		q = q.Where("studio_type = ?", f.Type)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}

	var list []Studio
	err := q.Order("name").Find(&list).Error
	return list, err
}

func (r *Repository) GetStudio(ctx context.Context, id int64) (*Studio, error) {
	var s Studio
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudioNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateStudio(ctx context.Context, s *Studio) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *Repository) SaveStudio(ctx context.Context, s *Studio) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]EquipmentCategory, error) {
	var list []EquipmentCategory
	err := r.db.WithContext(ctx).Order("name").Find(&list).Error
	return list, err
}

func (r *Repository) CreateCategory(ctx context.Context, c *EquipmentCategory) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *Repository) categoryExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&EquipmentCategory{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) ListEquipment(ctx context.Context, f EquipmentFilters) ([]Equipment, error) {
	q := r.db.WithContext(ctx).Model(&Equipment{}).Preload("Category")
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RentOnly {
		q = q.Where("is_available_for_rent = ? AND status = ?", true, EquipmentAvailable)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(model) LIKE ?", like, like, like)
	}

	var list []Equipment
	err := q.Order("name").Find(&list).Error
	return list, err
}

func (r *Repository) GetEquipment(ctx context.Context, id int64) (*Equipment, error) {
	var e Equipment
	if err := r.db.WithContext(ctx).Preload("Category").First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repository) CreateEquipment(ctx context.Context, e *Equipment) error {
	if err := r.db.WithContext(ctx).Omit("Category").Create(e).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *Repository) SaveEquipment(ctx context.Context, e *Equipment) error {
	if err := r.db.WithContext(ctx).Omit("Category").Save(e).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *Repository) ListServices(ctx context.Context, activeOnly bool) ([]Service, error) {
	q := r.db.WithContext(ctx).Model(&Service{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var list []Service
	err := q.Order("name").Find(&list).Error
	return list, err
}

func (r *Repository) GetService(ctx context.Context, id int64) (*Service, error) {
	var s Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateService(ctx context.Context, s *Service) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}
