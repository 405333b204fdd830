package catalog

import "time"

type StudioType string

const (
	StudioVideo StudioType = "VIDEO"
	StudioAudio StudioType = "AUDIO"
	StudioPhoto StudioType = "PHOTO"
	StudioMulti StudioType = "MULTI"
)

type StudioStatus string

const (
	StudioAvailable   StudioStatus = "AVAILABLE"
	StudioUnavailable StudioStatus = "UNAVAILABLE"
	StudioMaintenance StudioStatus = "MAINTENANCE"
)

// Studio is a bookable room. Prices are in centimes.
type Studio struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:varchar(150);not null"`
	Code        string       `json:"code" gorm:"type:varchar(30);uniqueIndex;not null"`
	Description string       `json:"description,omitempty" gorm:"type:text"`
	Type        StudioType   `json:"studio_type" gorm:"column:studio_type;type:varchar(10);not null;default:MULTI"`
	City        string       `json:"city,omitempty" gorm:"type:varchar(100)"`
	Address     string       `json:"address,omitempty" gorm:"type:varchar(255)"`
	HourlyRate  int64        `json:"hourly_rate" gorm:"not null;default:0"`
	DailyRate   int64        `json:"daily_rate" gorm:"not null;default:0"`
	LengthCM    int64        `json:"length_cm" gorm:"column:length_cm;not null;default:0"`
	WidthCM     int64        `json:"width_cm" gorm:"column:width_cm;not null;default:0"`
	AreaSqCM    int64        `json:"area_sq_cm" gorm:"column:area_sq_cm;not null;default:0"`
	Capacity    int          `json:"capacity" gorm:"not null;default:1"`
	Status      StudioStatus `json:"status" gorm:"type:varchar(20);not null;default:AVAILABLE;index"`
	IsActive    bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ComputeArea fills the area from the dimensions when it is unset.
func (s *Studio) ComputeArea() {
	if s.AreaSqCM == 0 && s.LengthCM > 0 && s.WidthCM > 0 {
		s.AreaSqCM = s.LengthCM * s.WidthCM
	}
}

func (s *Studio) Bookable() bool {
	return s.IsActive && s.Status == StudioAvailable
}

type EquipmentCategory struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

type EquipmentStatus string

const (
	EquipmentAvailable    EquipmentStatus = "AVAILABLE"
	EquipmentInUse        EquipmentStatus = "IN_USE"
	EquipmentMaintenance  EquipmentStatus = "MAINTENANCE"
	EquipmentOutOfService EquipmentStatus = "OUT_OF_SERVICE"
	EquipmentRetired      EquipmentStatus = "RETIRED"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentAvailable, EquipmentInUse, EquipmentMaintenance, EquipmentOutOfService, EquipmentRetired:
		return true
	}
	return false
}

type Equipment struct {
	ID                  int64           `json:"id" gorm:"primaryKey"`
	Name                string          `json:"name" gorm:"type:varchar(150);not null"`
	CategoryID          *int64          `json:"category_id,omitempty" gorm:"index"`
	Brand               string          `json:"brand,omitempty" gorm:"type:varchar(100)"`
	Model               string          `json:"model,omitempty" gorm:"type:varchar(100)"`
	SerialNumber        *string         `json:"serial_number,omitempty" gorm:"type:varchar(100);uniqueIndex"`
	Status              EquipmentStatus `json:"status" gorm:"type:varchar(20);not null;default:AVAILABLE;index"`
	IsAvailableForRent  bool            `json:"is_available_for_rent" gorm:"not null;default:false"`
	DailyRentalPrice    int64           `json:"daily_rental_price" gorm:"not null;default:0"`
	StudioID            *int64          `json:"studio_id,omitempty" gorm:"index"`
	PurchaseDate        *time.Time      `json:"purchase_date,omitempty"`
	LastMaintenanceDate *time.Time      `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time      `json:"next_maintenance_date,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	Category *EquipmentCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// Rentable reports whether a client may reserve the item.
func (e *Equipment) Rentable() bool {
	return e.IsAvailableForRent && e.Status == EquipmentAvailable
}

// NeedsMaintenance reports whether the next maintenance date has passed.
func (e *Equipment) NeedsMaintenance(now time.Time) bool {
	return e.NextMaintenanceDate != nil && !e.NextMaintenanceDate.After(now)
}

// Service is a production offer a reservation can be made for.
type Service struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"type:varchar(150);not null"`
	Slug              string    `json:"slug" gorm:"type:varchar(160);uniqueIndex;not null"`
	Description       string    `json:"description,omitempty" gorm:"type:text"`
	BasePrice         int64     `json:"base_price" gorm:"not null;default:0"`
	RequiresStudio    bool      `json:"requires_studio" gorm:"not null;default:false"`
	RequiresEquipment bool      `json:"requires_equipment" gorm:"not null;default:false"`
	IsActive          bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Models returns the gorm models owned by this package.
func Models() []any {
	return []any{&Studio{}, &EquipmentCategory{}, &Equipment{}, &Service{}}
}
