// Package mailer moves outbound email jobs through a RabbitMQ queue. The API
// publishes jobs and cmd/mailer consumes them.
package mailer

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Template names the message a job renders. Bodies live with the sender.
type Template string

const (
	TemplatePartnerActivation Template = "partner_activation"
	TemplatePartnerRejected   Template = "partner_rejected"
	TemplateContractValidated Template = "contract_validated"
	TemplateCommissionPaid    Template = "commission_paid"
	TemplateJobDecision       Template = "job_application_decision"
)

var ErrInvalidJob = errors.New("invalid mail job")

type Job struct {
	ID        string            `json:"id"`
	To        string            `json:"to"`
	Subject   string            `json:"subject"`
	Template  Template          `json:"template"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewJob(to, subject string, tpl Template, data map[string]string) Job {
	return Job{
		ID:        uuid.NewString(),
		To:        strings.TrimSpace(to),
		Subject:   subject,
		Template:  tpl,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
}

func (j Job) Validate() error {
	if j.ID == "" {
		return errors.Join(ErrInvalidJob, errors.New("missing id"))
	}
	if !strings.Contains(j.To, "@") {
		return errors.Join(ErrInvalidJob, errors.New("bad recipient"))
	}
	if j.Template == "" {
		return errors.Join(ErrInvalidJob, errors.New("missing template"))
	}
	return nil
}
