package partner

import (
	"time"

	"gorm.io/gorm"
)

type Region struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	IsPriority bool   `json:"is_priority" gorm:"not null;default:false"`
	Active     bool   `json:"active" gorm:"not null;default:true"`
}

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewing, ApplicationInterview, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

type Application struct {
	ID                 int64             `json:"id" gorm:"primaryKey"`
	FullName           string            `json:"full_name" gorm:"type:varchar(200);not null"`
	Phone              string            `json:"phone" gorm:"type:varchar(20);not null"`
	Email              string            `json:"email,omitempty" gorm:"type:varchar(255);index"`
	WhatsApp           string            `json:"whatsapp,omitempty" gorm:"type:varchar(20)"`
	IDType             string            `json:"id_type" gorm:"type:varchar(20);not null;default:cnib"`
	IDNumber           string            `json:"id_number" gorm:"type:varchar(50);not null"`
	RegionID           *int64            `json:"region_id,omitempty" gorm:"index"`
	Address            string            `json:"address,omitempty" gorm:"type:text"`
	CurrentActivity    string            `json:"current_activity" gorm:"type:varchar(200)"`
	ExperienceYears    int               `json:"experience_years" gorm:"not null;default:0"`
	NetworkStrength    string            `json:"network_strength" gorm:"type:varchar(20);not null;default:medium"`
	NetworkDescription string            `json:"network_description,omitempty" gorm:"type:text"`
	SectorsKnowledge   string            `json:"sectors_knowledge,omitempty" gorm:"type:text"`
	Motivation         string            `json:"motivation,omitempty" gorm:"type:text"`
	Availability       string            `json:"availability" gorm:"type:varchar(20);not null;default:flexible"`
	References         string            `json:"references,omitempty" gorm:"type:text"`
	Status             ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	InternalNotes      string            `json:"internal_notes,omitempty" gorm:"type:text"`
	ReviewedAt         *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedByID       *int64            `json:"reviewed_by_id,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	Region *Region `json:"region,omitempty" gorm:"foreignKey:RegionID;constraint:OnDelete:SET NULL"`
}

func (Application) TableName() string {
	return "partner_applications"
}

// Partner is an approved business partner. Money columns are centimes and
// CommissionRateBP is in basis points.
type Partner struct {
	ID                    int64      `json:"id" gorm:"primaryKey"`
	ApplicationID         int64      `json:"application_id" gorm:"uniqueIndex;not null"`
	UserID                int64      `json:"user_id" gorm:"uniqueIndex;not null"`
	Code                  string     `json:"partner_code" gorm:"column:partner_code;type:varchar(20);uniqueIndex;not null"`
	IsActive              bool       `json:"is_active" gorm:"not null;default:true"`
	SuspensionReason      string     `json:"suspension_reason,omitempty" gorm:"type:text"`
	CommissionRateBP      int64      `json:"commission_rate_bp" gorm:"not null"`
	TotalContracts        int64      `json:"total_contracts" gorm:"not null;default:0"`
	TotalRevenue          int64      `json:"total_revenue" gorm:"not null;default:0"`
	TotalCommissionEarned int64      `json:"total_commission_earned" gorm:"not null;default:0"`
	TotalCommissionPaid   int64      `json:"total_commission_paid" gorm:"not null;default:0"`
	ActivatedAt           time.Time  `json:"activated_at"`
	LastContractAt        *time.Time `json:"last_contract_at,omitempty"`

	Application *Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

func (Partner) TableName() string {
	return "business_partners"
}

func (p *Partner) PendingCommission() int64 {
	return p.TotalCommissionEarned - p.TotalCommissionPaid
}

type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractPending    ContractStatus = "pending"
	ContractValidated  ContractStatus = "validated"
	ContractSigned     ContractStatus = "signed"
	ContractInProgress ContractStatus = "in_progress"
	ContractCompleted  ContractStatus = "completed"
	ContractCancelled  ContractStatus = "cancelled"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractDraft, ContractPending, ContractValidated, ContractSigned,
		ContractInProgress, ContractCompleted, ContractCancelled:
		return true
	}
	return false
}

// Counted reports whether the contract is included in the partner totals.
func (s ContractStatus) Counted() bool {
	switch s {
	case ContractValidated, ContractSigned, ContractInProgress, ContractCompleted:
		return true
	}
	return false
}

type ClientType string

const (
	ClientInstitution ClientType = "institution"
	ClientNGO         ClientType = "ong"
	ClientCompany     ClientType = "company"
	ClientIndividual  ClientType = "individual"
	ClientEvent       ClientType = "event"
)

type Contract struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	PartnerID        int64          `json:"partner_id" gorm:"not null;index"`
	ClientName       string         `json:"client_name" gorm:"type:varchar(200);not null"`
	ClientType       ClientType     `json:"client_type" gorm:"type:varchar(50);not null"`
	ClientContact    string         `json:"client_contact" gorm:"type:varchar(200)"`
	ServiceType      string         `json:"service_type" gorm:"type:varchar(100)"`
	Description      string         `json:"description" gorm:"type:text"`
	Amount           int64          `json:"contract_amount" gorm:"column:contract_amount;not null"`
	CommissionRateBP int64          `json:"commission_rate_bp" gorm:"not null"`
	CommissionAmount int64          `json:"commission_amount" gorm:"not null"`
	Status           ContractStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	CreatedAt        time.Time      `json:"created_at"`
	ValidatedAt      *time.Time     `json:"validated_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	ValidatedByID    *int64         `json:"validated_by_id,omitempty"`

	Partner *Partner `json:"partner,omitempty" gorm:"foreignKey:PartnerID;constraint:OnDelete:RESTRICT"`
}

func (Contract) TableName() string {
	return "partner_contracts"
}

// BeforeSave keeps the stored commission in line with amount and rate.
func (c *Contract) BeforeSave(*gorm.DB) error {
	c.CommissionAmount = CommissionFor(c.Amount, c.CommissionRateBP)
	return nil
}

type PaymentMethod string

const (
	MethodOrangeMoney  PaymentMethod = "orange_money"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheck        PaymentMethod = "check"
	MethodCash         PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodOrangeMoney, MethodBankTransfer, MethodCheck, MethodCash:
		return true
	}
	return false
}

type CommissionPayment struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	PartnerID   int64         `json:"partner_id" gorm:"not null;index"`
	Amount      int64         `json:"amount" gorm:"not null"`
	Method      PaymentMethod `json:"payment_method" gorm:"column:payment_method;type:varchar(20);not null"`
	Reference   string        `json:"reference,omitempty" gorm:"type:varchar(100)"`
	Notes       string        `json:"notes,omitempty" gorm:"type:text"`
	PaidAt      time.Time     `json:"paid_at" gorm:"not null"`
	CreatedByID *int64        `json:"created_by_id,omitempty"`

	Contracts []Contract `json:"contracts,omitempty" gorm:"many2many:commission_payment_contracts"`
}

func (CommissionPayment) TableName() string {
	return "commission_payments"
}

func Models() []any {
	return []any{&Region{}, &Application{}, &Partner{}, &Contract{}, &CommissionPayment{}}
}
