package offer

import "time"

// ApplicationStatus is shared by promotion and job applications.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusAccepted ApplicationStatus = "ACCEPTED"
	StatusRejected ApplicationStatus = "REJECTED"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Decision reports whether s closes an application.
func (s ApplicationStatus) Decision() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Offer is a time-boxed discount on a catalog service. Dates are whole days,
// both inclusive.
type Offer struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	ServiceID       int64     `json:"service_id" gorm:"not null;index"`
	Title           string    `json:"title" gorm:"type:varchar(150);not null"`
	Description     string    `json:"description,omitempty" gorm:"type:text"`
	DiscountPercent int       `json:"discount_percent" gorm:"not null;default:0;check:chk_offers_discount,discount_percent BETWEEN 0 AND 100"`
	StartDate       time.Time `json:"start_date" gorm:"not null"`
	EndDate         time.Time `json:"end_date" gorm:"not null"`
	IsActive        bool      `json:"is_active" gorm:"not null;index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Offer) TableName() string { return "offers" }

// Open reports whether clients can apply on day.
func (o *Offer) Open(day time.Time) bool {
	d := truncateDay(day)
	return o.IsActive && !d.Before(truncateDay(o.StartDate)) && !d.After(truncateDay(o.EndDate))
}

// OfferApplication is unique per (user, offer).
type OfferApplication struct {
	ID          int64             `json:"id" gorm:"primaryKey"`
	UserID      int64             `json:"user_id" gorm:"not null;uniqueIndex:idx_offer_app_user_offer,priority:1"`
	OfferID     int64             `json:"offer_id" gorm:"not null;uniqueIndex:idx_offer_app_user_offer,priority:2;index"`
	Message     string            `json:"message,omitempty" gorm:"type:text"`
	Status      ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;default:PENDING;index"`
	DecidedByID *int64            `json:"decided_by_id,omitempty"`
	DecidedAt   *time.Time        `json:"decided_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`

	Offer *Offer `json:"offer,omitempty" gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
}

func (OfferApplication) TableName() string { return "offer_applications" }

type JobType string

const (
	JobInternship JobType = "INTERNSHIP"
	JobEmployment JobType = "JOB"
)

func (t JobType) Valid() bool { return t == JobInternship || t == JobEmployment }

type JobStatus string

const (
	JobDraft     JobStatus = "DRAFT"
	JobPublished JobStatus = "PUBLISHED"
	JobClosed    JobStatus = "CLOSED"
)

func (s JobStatus) Valid() bool {
	return s == JobDraft || s == JobPublished || s == JobClosed
}

// JobOffer is a recruitment posting.
type JobOffer struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	Status           JobStatus  `json:"status" gorm:"type:varchar(20);not null;default:DRAFT;index"`
	Type             JobType    `json:"offer_type" gorm:"column:offer_type;type:varchar(20);not null;default:JOB"`
	Title            string     `json:"title" gorm:"type:varchar(200);not null"`
	Slug             string     `json:"slug" gorm:"type:varchar(80);uniqueIndex;not null"`
	Department       string     `json:"department,omitempty" gorm:"type:varchar(120)"`
	Location         string     `json:"location,omitempty" gorm:"type:varchar(120)"`
	ContractType     string     `json:"contract_type,omitempty" gorm:"type:varchar(20)"`
	EducationLevel   string     `json:"level,omitempty" gorm:"column:level;type:varchar(20)"`
	Summary          string     `json:"summary,omitempty" gorm:"type:varchar(255)"`
	Description      string     `json:"description" gorm:"type:text"`
	Responsibilities string     `json:"responsibilities,omitempty" gorm:"type:text"`
	Requirements     string     `json:"requirements,omitempty" gorm:"type:text"`
	Benefits         string     `json:"benefits,omitempty" gorm:"type:text"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (JobOffer) TableName() string { return "job_offers" }

// Open reports whether the posting accepts applications on day. The deadline
// day itself is still open.
func (j *JobOffer) Open(day time.Time) bool {
	if j.Status != JobPublished {
		return false
	}
	return j.Deadline == nil || !truncateDay(*j.Deadline).Before(truncateDay(day))
}

// JobApplication is unique per (offer, user).
type JobApplication struct {
	ID           int64             `json:"id" gorm:"primaryKey"`
	OfferID      int64             `json:"offer_id" gorm:"not null;uniqueIndex:idx_job_app_offer_user,priority:1"`
	UserID       int64             `json:"user_id" gorm:"not null;uniqueIndex:idx_job_app_offer_user,priority:2;index"`
	FullName     string            `json:"full_name" gorm:"type:varchar(150);not null"`
	Email        string            `json:"email" gorm:"type:varchar(255);not null"`
	Phone        string            `json:"phone,omitempty" gorm:"type:varchar(50)"`
	CoverLetter  string            `json:"cover_letter,omitempty" gorm:"type:text"`
	PortfolioURL string            `json:"portfolio_url,omitempty" gorm:"type:varchar(255)"`
	Status       ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;default:PENDING;index"`
	InternalNote string            `json:"internal_note,omitempty" gorm:"type:text"`
	DecidedByID  *int64            `json:"decided_by_id,omitempty"`
	DecidedAt    *time.Time        `json:"decided_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`

	Offer *JobOffer `json:"offer,omitempty" gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
}

func (JobApplication) TableName() string { return "job_applications" }

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Models() []any {
	return []any{&Offer{}, &OfferApplication{}, &JobOffer{}, &JobApplication{}}
}
