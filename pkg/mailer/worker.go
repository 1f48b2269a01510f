package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elysian/registration-service/pkg/mailer/templates"
)

// Outcome tells the queue consumer what to do with a delivery.
type Outcome int

const (
	Ack   Outcome = iota // sent
	Drop                 // unusable payload, nack without requeue
	Retry                // transient failure, nack with requeue
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Drop:
		return "drop"
	default:
		return "retry"
	}
}

// Process decodes a queued job, renders its template if any and sends it.
func Process(ctx context.Context, body []byte, sender Sender) (Outcome, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return Drop, fmt.Errorf("bad message: %w", err)
	}
	if err := job.Validate(); err != nil {
		return Drop, err
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := templates.Render(job.Template, job.Data)
		if err != nil {
			return Drop, fmt.Errorf("render %s: %w", job.Template, err)
		}
		subject, text, html = s, t, h
	}

	if err := sender.Send(ctx, job.To, subject, text, html); err != nil {
		return Retry, fmt.Errorf("send: %w", err)
	}
	return Ack, nil
}
