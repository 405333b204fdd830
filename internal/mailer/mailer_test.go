package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	jobs []Job
	err  error
}

func (s *recordingSender) Send(_ context.Context, job Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func TestConsumerHandle(t *testing.T) {
	sender := &recordingSender{}
	c := NewConsumer("amqp://unused", "mail.test", sender)
	ctx := context.Background()

	job := NewJob(" partner@olou.ci ", "Welcome", TemplatePartnerActivation, map[string]string{"code": "BF-OUAG-001"})
	body, err := json.Marshal(job)
	require.NoError(t, err)

	require.NoError(t, c.Handle(ctx, body))
	require.Len(t, sender.jobs, 1)
	assert.Equal(t, "partner@olou.ci", sender.jobs[0].To)
	assert.Equal(t, "BF-OUAG-001", sender.jobs[0].Data["code"])

	assert.Error(t, c.Handle(ctx, []byte("{not json")))

	bad, _ := json.Marshal(Job{ID: "x", To: "nobody", Template: TemplatePartnerRejected})
	assert.ErrorIs(t, c.Handle(ctx, bad), ErrInvalidJob)

	sender.err = errors.New("smtp down")
	assert.EqualError(t, c.Handle(ctx, body), "smtp down")
}

func TestNewEnqueuer_WithoutBroker(t *testing.T) {
	q := NewEnqueuer("", "mail.test")
	_, ok := q.(LogEnqueuer)
	require.True(t, ok)

	assert.NoError(t, q.Enqueue(context.Background(), NewJob("a@b.co", "Hi", TemplateCommissionPaid, nil)))
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{}), ErrInvalidJob)
}
