package training

import "time"

type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
	LevelAll          Level = "ALL_LEVELS"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAll:
		return true
	}
	return false
}

type Mode string

const (
	ModeOnsite Mode = "ONSITE"
	ModeOnline Mode = "ONLINE"
	ModeHybrid Mode = "HYBRID"
)

func (m Mode) Valid() bool {
	return m == ModeOnsite || m == ModeOnline || m == ModeHybrid
}

// EnrollmentStatus is the staff decision on an enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "PENDING"
	EnrollmentAccepted EnrollmentStatus = "ACCEPTED"
	EnrollmentRejected EnrollmentStatus = "REJECTED"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentAccepted, EnrollmentRejected:
		return true
	}
	return false
}

type Category struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"type:varchar(150);not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Icon        string `json:"icon,omitempty" gorm:"type:varchar(100)"`
}

func (Category) TableName() string { return "training_categories" }

// Training is a course sold by the company. Price is in centimes and
// MaxSeats caps accepted enrollments when set.
type Training struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	Title            string     `json:"title" gorm:"type:varchar(200);not null"`
	Slug             string     `json:"slug" gorm:"type:varchar(220);uniqueIndex;not null"`
	ShortDescription string     `json:"short_description,omitempty" gorm:"type:varchar(255)"`
	Description      string     `json:"description" gorm:"type:text"`
	CategoryID       *int64     `json:"category_id,omitempty" gorm:"index"`
	Level            Level      `json:"level" gorm:"type:varchar(20);not null;default:ALL_LEVELS"`
	Mode             Mode       `json:"mode" gorm:"type:varchar(20);not null;default:ONSITE"`
	Location         string     `json:"location,omitempty" gorm:"type:varchar(255)"`
	Objectives       string     `json:"objectives,omitempty" gorm:"type:text"`
	Prerequisites    string     `json:"prerequisites,omitempty" gorm:"type:text"`
	TargetAudience   string     `json:"target_audience,omitempty" gorm:"type:text"`
	Program          string     `json:"program,omitempty" gorm:"type:text"`
	DurationHours    *int       `json:"duration_hours,omitempty"`
	Price            *int64     `json:"price,omitempty"`
	Certification    bool       `json:"certification" gorm:"not null;default:false"`
	MaxSeats         *int       `json:"max_seats,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	Schedule         string     `json:"schedule,omitempty" gorm:"type:text"`
	IsActive         bool       `json:"is_active" gorm:"not null;index"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

func (Training) TableName() string { return "trainings" }

// Enrollment is unique per (user, training).
type Enrollment struct {
	ID          int64            `json:"id" gorm:"primaryKey"`
	UserID      int64            `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_training,priority:1"`
	TrainingID  int64            `json:"training_id" gorm:"not null;uniqueIndex:idx_enrollment_user_training,priority:2;index"`
	Status      EnrollmentStatus `json:"status" gorm:"type:varchar(20);not null;default:PENDING;index"`
	DecidedByID *int64           `json:"decided_by_id,omitempty"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`

	Training *Training `json:"training,omitempty" gorm:"foreignKey:TrainingID;constraint:OnDelete:CASCADE"`
}

func (Enrollment) TableName() string { return "training_enrollments" }

func Models() []any {
	return []any{&Category{}, &Training{}, &Enrollment{}}
}
