package reservation

import (
	"time"

	"gorm.io/gorm"

	"oloustream/internal/domain/catalog"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Blocking statuses hold their studio slot.
var blockingStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// AllowedTransitions lists the moves offered to staff in Detail.Next. The
// service still accepts any pair of valid statuses.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusRejected:  {StatusPending},
	StatusCancelled: {StatusPending},
	StatusCompleted: {},
}

// Reservation covers the half-open interval [StartAt, EndAt).
type Reservation struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	UserID       int64     `json:"user_id" gorm:"not null;index"`
	StudioID     *int64    `json:"studio_id,omitempty" gorm:"index:idx_reservations_studio_window,priority:1"`
	ServiceID    *int64    `json:"service_id,omitempty" gorm:"index"`
	StartAt      time.Time `json:"start_at" gorm:"not null;index:idx_reservations_studio_window,priority:2;check:chk_reservations_window,start_at < end_at"`
	EndAt        time.Time `json:"end_at" gorm:"not null"`
	Status       Status    `json:"status" gorm:"type:varchar(20);not null;default:PENDING;index"`
	AdminComment string    `json:"admin_comment,omitempty" gorm:"type:text"`
	AssignedToID *int64    `json:"assigned_to_id,omitempty" gorm:"index"`

	ContactName    string `json:"contact_name" gorm:"type:varchar(150)"`
	ContactCompany string `json:"contact_company,omitempty" gorm:"type:varchar(150)"`
	ContactPhone   string `json:"contact_phone,omitempty" gorm:"type:varchar(30)"`
	ContactEmail   string `json:"contact_email" gorm:"type:varchar(255)"`
	ContactCity    string `json:"contact_city,omitempty" gorm:"type:varchar(100)"`
	ContactCountry string `json:"contact_country,omitempty" gorm:"type:varchar(100)"`
	ProjectSummary string `json:"project_summary,omitempty" gorm:"type:text"`
	Message        string `json:"message,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Studio    *catalog.Studio     `json:"studio,omitempty" gorm:"foreignKey:StudioID;constraint:OnDelete:SET NULL"`
	Service   *catalog.Service    `json:"service,omitempty" gorm:"foreignKey:ServiceID;constraint:OnDelete:SET NULL"`
	Equipment []catalog.Equipment `json:"equipment,omitempty" gorm:"many2many:reservation_equipment"`
	History   []StatusHistory     `json:"history,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
}

func (r *Reservation) Duration() time.Duration {
	return r.EndAt.Sub(r.StartAt)
}

// StatusHistory is an append-only audit row.
type StatusHistory struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	ReservationID int64     `json:"reservation_id" gorm:"not null;index"`
	OldStatus     Status    `json:"old_status" gorm:"type:varchar(20);not null"`
	NewStatus     Status    `json:"new_status" gorm:"type:varchar(20);not null"`
	ChangedByID   *int64    `json:"changed_by_id,omitempty"`
	ChangedAt     time.Time `json:"changed_at" gorm:"not null;index"`
	Note          string    `json:"note,omitempty" gorm:"type:varchar(500)"`
}

func (StatusHistory) TableName() string {
	return "reservation_status_history"
}

func (h *StatusHistory) BeforeUpdate(*gorm.DB) error {
	return ErrHistoryImmutable
}

func Models() []any {
	return []any{&Reservation{}, &StatusHistory{}}
}
