package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

type CatalogService struct {
	repo *Repository
}

func NewService(repo *Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

type StudioRequest struct {
	Name        string       `json:"name" binding:"required,max=150"`
	Code        string       `json:"code" binding:"required,max=30"`
	Description string       `json:"description"`
	Type        StudioType   `json:"studio_type" binding:"omitempty,oneof=VIDEO AUDIO PHOTO MULTI"`
	City        string       `json:"city" binding:"max=100"`
	Address     string       `json:"address" binding:"max=255"`
	HourlyRate  int64        `json:"hourly_rate" binding:"gte=0"`
	DailyRate   int64        `json:"daily_rate" binding:"gte=0"`
	LengthCM    int64        `json:"length_cm" binding:"gte=0"`
	WidthCM     int64        `json:"width_cm" binding:"gte=0"`
	AreaSqCM    int64        `json:"area_sq_cm" binding:"gte=0"`
	Capacity    int          `json:"capacity" binding:"gte=0"`
	Status      StudioStatus `json:"status" binding:"omitempty,oneof=AVAILABLE UNAVAILABLE MAINTENANCE"`
	IsActive    *bool        `json:"is_active"`
}

func (r StudioRequest) apply(s *Studio) {
	s.Name = strings.TrimSpace(r.Name)
	s.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	s.Description = r.Description
	if r.Type != "" {
		s.Type = r.Type
	}
	if s.Type == "" {
		s.Type = StudioMulti
	}
	s.City = r.City
	s.Address = r.Address
	s.HourlyRate = r.HourlyRate
	s.DailyRate = r.DailyRate
	s.LengthCM = r.LengthCM
	s.WidthCM = r.WidthCM
	s.AreaSqCM = r.AreaSqCM
	if r.Capacity > 0 {
		s.Capacity = r.Capacity
	}
	if s.Capacity == 0 {
		s.Capacity = 1
	}
	if r.Status != "" {
		s.Status = r.Status
	}
	if s.Status == "" {
		s.Status = StudioAvailable
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	s.ComputeArea()
}

func (s *CatalogService) ListStudios(ctx context.Context, f StudioFilters) ([]Studio, error) {
	return s.repo.ListStudios(ctx, f)
}

func (s *CatalogService) GetStudio(ctx context.Context, id int64) (*Studio, error) {
	return s.repo.GetStudio(ctx, id)
}

func (s *CatalogService) CreateStudio(ctx context.Context, req StudioRequest) (*Studio, error) {
	studio := &Studio{IsActive: true}
	req.apply(studio)
	if err := s.repo.CreateStudio(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

func (s *CatalogService) UpdateStudio(ctx context.Context, id int64, req StudioRequest) (*Studio, error) {
	studio, err := s.repo.GetStudio(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(studio)
	if err := s.repo.SaveStudio(ctx, studio); err != nil {
		return nil, err
	}
	return studio, nil
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]EquipmentCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req CategoryRequest) (*EquipmentCategory, error) {
	c := &EquipmentCategory{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type EquipmentRequest struct {
	Name                string          `json:"name" binding:"required,max=150"`
	CategoryID          *int64          `json:"category_id"`
	Brand               string          `json:"brand" binding:"max=100"`
	Model               string          `json:"model" binding:"max=100"`
	SerialNumber        string          `json:"serial_number" binding:"max=100"`
	Status              EquipmentStatus `json:"status" binding:"omitempty,oneof=AVAILABLE IN_USE MAINTENANCE OUT_OF_SERVICE RETIRED"`
	IsAvailableForRent  bool            `json:"is_available_for_rent"`
	DailyRentalPrice    int64           `json:"daily_rental_price" binding:"gte=0"`
	StudioID            *int64          `json:"studio_id"`
	PurchaseDate        *time.Time      `json:"purchase_date"`
	LastMaintenanceDate *time.Time      `json:"last_maintenance_date"`
	NextMaintenanceDate *time.Time      `json:"next_maintenance_date"`
}

func (s *CatalogService) applyEquipment(ctx context.Context, req EquipmentRequest, e *Equipment) error {
	if req.CategoryID != nil {
		ok, err := s.repo.categoryExists(ctx, *req.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCategoryNotFound
		}
	}
	if req.StudioID != nil {
		if _, err := s.repo.GetStudio(ctx, *req.StudioID); err != nil {
			return err
		}
	}

	e.Name = strings.TrimSpace(req.Name)
	e.CategoryID = req.CategoryID
	e.Brand = req.Brand
	e.Model = req.Model
	e.SerialNumber = nil
	if sn := strings.TrimSpace(req.SerialNumber); sn != "" {
		e.SerialNumber = &sn
	}
	if req.Status != "" {
		e.Status = req.Status
	}
	if e.Status == "" {
		e.Status = EquipmentAvailable
	}
	e.IsAvailableForRent = req.IsAvailableForRent
	e.DailyRentalPrice = req.DailyRentalPrice
	e.StudioID = req.StudioID
	e.PurchaseDate = req.PurchaseDate
	e.LastMaintenanceDate = req.LastMaintenanceDate
	e.NextMaintenanceDate = req.NextMaintenanceDate
	if e.LastMaintenanceDate != nil && e.NextMaintenanceDate != nil && e.NextMaintenanceDate.Before(*e.LastMaintenanceDate) {
		return fmt.Errorf("%w: next maintenance precedes last maintenance", ErrInvalidInput)
	}
	return nil
}

func (s *CatalogService) ListEquipment(ctx context.Context, f EquipmentFilters) ([]Equipment, error) {
	return s.repo.ListEquipment(ctx, f)
}

func (s *CatalogService) GetEquipment(ctx context.Context, id int64) (*Equipment, error) {
	return s.repo.GetEquipment(ctx, id)
}

func (s *CatalogService) CreateEquipment(ctx context.Context, req EquipmentRequest) (*Equipment, error) {
	e := &Equipment{}
	if err := s.applyEquipment(ctx, req, e); err != nil {
		return nil, err
	}
	if err := s.repo.CreateEquipment(ctx, e); err != nil {
		return nil, err
	}
	return s.repo.GetEquipment(ctx, e.ID)
}

func (s *CatalogService) UpdateEquipment(ctx context.Context, id int64, req EquipmentRequest) (*Equipment, error) {
	e, err := s.repo.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyEquipment(ctx, req, e); err != nil {
		return nil, err
	}
	e.Category = nil
	if err := s.repo.SaveEquipment(ctx, e); err != nil {
		return nil, err
	}
	return s.repo.GetEquipment(ctx, id)
}

type ServiceRequest struct {
	Name              string `json:"name" binding:"required,max=150"`
	Slug              string `json:"slug" binding:"max=160"`
	Description       string `json:"description"`
	BasePrice         int64  `json:"base_price" binding:"gte=0"`
	RequiresStudio    bool   `json:"requires_studio"`
	RequiresEquipment bool   `json:"requires_equipment"`
}

func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool) ([]Service, error) {
	return s.repo.ListServices(ctx, activeOnly)
}

func (s *CatalogService) GetService(ctx context.Context, id int64) (*Service, error) {
	return s.repo.GetService(ctx, id)
}

func (s *CatalogService) CreateService(ctx context.Context, req ServiceRequest) (*Service, error) {
	key := Slugify(req.Slug)
	if key == "" {
		key = Slugify(req.Name)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: empty slug", ErrInvalidInput)
	}
	svc := &Service{
		Name:              strings.TrimSpace(req.Name),
		Slug:              key,
		Description:       req.Description,
		BasePrice:         req.BasePrice,
		RequiresStudio:    req.RequiresStudio,
		RequiresEquipment: req.RequiresEquipment,
		IsActive:          true,
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// Slugify transliterates s to ASCII, lowercases it and joins words with '-'.
func Slugify(s string) string {
	return slug.Make(s)
}

// UniqueSlug slugifies title and appends -2, -3, ... until taken reports the
// value free. Empty titles fall back to fallback.
func UniqueSlug(ctx context.Context, title, fallback string, taken func(ctx context.Context, slug string) (bool, error)) (string, error) {
	base := Slugify(title)
	if len(base) > 50 {
		base = strings.TrimRight(base[:50], "-")
	}
	if base == "" {
		base = fallback
	}
	candidate := base
	for i := 2; ; i++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
