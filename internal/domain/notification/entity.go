package notification

import (
	"time"
)

// Type represents notification type
type Type string

const (
	TypeGeneral                  Type = "GENERAL"
	TypeReservationCreated       Type = "RESERVATION_CREATED"
	TypeReservationStatusChanged Type = "RESERVATION_STATUS_CHANGED"
	TypeMessageReceived          Type = "MESSAGE_RECEIVED"
	TypePaymentStatus            Type = "PAYMENT_STATUS"
	TypeSystem                   Type = "SYSTEM"
)

func (t Type) Valid() bool {
	switch t {
	case TypeGeneral, TypeReservationCreated, TypeReservationStatusChanged,
		TypeMessageReceived, TypePaymentStatus, TypeSystem:
		return true
	}
	return false
}

// TargetKind names the kind of entity a notification points at.
type TargetKind string

const (
	TargetReservation  TargetKind = "reservation"
	TargetConversation TargetKind = "conversation"
	TargetContract     TargetKind = "contract"
	TargetApplication  TargetKind = "partner_application"
	TargetCommission   TargetKind = "commission_payment"
	TargetPayment      TargetKind = "payment"
	TargetService      TargetKind = "service"
	TargetEnrollment   TargetKind = "training_enrollment"
	TargetOfferApp     TargetKind = "offer_application"
	TargetJobApp       TargetKind = "job_application"
)

// Target is the entity a notification refers to. The zero value means none.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   int64      `json:"id"`
}

func ReservationTarget(id int64) Target  { return Target{Kind: TargetReservation, ID: id} }
func ConversationTarget(id int64) Target { return Target{Kind: TargetConversation, ID: id} }
func ContractTarget(id int64) Target     { return Target{Kind: TargetContract, ID: id} }
func ApplicationTarget(id int64) Target  { return Target{Kind: TargetApplication, ID: id} }
func CommissionTarget(id int64) Target   { return Target{Kind: TargetCommission, ID: id} }
func PaymentTarget(id int64) Target      { return Target{Kind: TargetPayment, ID: id} }
func ServiceTarget(id int64) Target      { return Target{Kind: TargetService, ID: id} }
func EnrollmentTarget(id int64) Target   { return Target{Kind: TargetEnrollment, ID: id} }
func OfferAppTarget(id int64) Target     { return Target{Kind: TargetOfferApp, ID: id} }
func JobAppTarget(id int64) Target       { return Target{Kind: TargetJobApp, ID: id} }

func (t Target) IsZero() bool { return t.Kind == "" && t.ID == 0 }

func (t Target) Valid() bool {
	if t.IsZero() {
		return true
	}
	switch t.Kind {
	case TargetReservation, TargetConversation, TargetContract, TargetApplication,
		TargetCommission, TargetPayment, TargetService, TargetEnrollment, TargetOfferApp, TargetJobApp:
		return t.ID > 0
	}
	return false
}

// Notification is an in-app message shown to one user.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	ActorID   *int64     `json:"actor_id,omitempty"`
	Type      Type       `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Target    *Target    `json:"target,omitempty"`
	Link      string     `json:"link,omitempty"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Input describes a notification to create. UserID is ignored by NotifyMany.
type Input struct {
	UserID  int64
	ActorID *int64
	Type    Type
	Title   string
	Message string
	Target  Target
	Link    string
}

type ListResult struct {
	Items  []Notification `json:"items"`
	Total  int64          `json:"total"`
	Unread int64          `json:"unread"`
}
