package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Enqueuer accepts mail jobs for asynchronous delivery.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// NewEnqueuer returns an AMQP publisher, or a LogEnqueuer when url is empty.
func NewEnqueuer(url, queue string) Enqueuer {
	if url == "" {
		log.Printf("mailer: RABBITMQ_URL not set, mail jobs will only be logged")
		return LogEnqueuer{}
	}
	return &Publisher{url: url, queue: queue}
}

// Publisher keeps one lazily opened AMQP channel and reopens it after
// failures.
type Publisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.ch = ch
	return ch, nil
}

func (p *Publisher) Enqueue(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		log.Printf("mailer: publish failed job_id=%s err=%v", job.ID, err)
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		_ = ch.Close()
		p.ch = nil
		log.Printf("mailer: publish failed job_id=%s err=%v", job.ID, err)
		return err
	}
	log.Printf("mailer: queued job_id=%s template=%s", job.ID, job.Template)
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// LogEnqueuer writes jobs to the log instead of a broker.
type LogEnqueuer struct{}

func (LogEnqueuer) Enqueue(_ context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	log.Printf("mailer: job_id=%s to=%s template=%s subject=%q (not sent, no broker)", job.ID, job.To, job.Template, job.Subject)
	return nil
}
