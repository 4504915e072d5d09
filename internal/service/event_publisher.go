package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// GradeEvent is published when a grade is persisted, so teacher dashboards
// and other consumers can react without polling the report endpoint.
type GradeEvent struct {
	GradeID      uint      `json:"grade_id"`
	SubmissionID uint      `json:"submission_id"`
	Score        float64   `json:"score"`
	ScoreMax     float64   `json:"score_max"`
	GradedBy     string    `json:"graded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// EventPublisher emits grading lifecycle events.
type EventPublisher interface {
	GradeCreated(ctx context.Context, event GradeEvent) error
}

type natsEventPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSEventPublisher constructs a publisher on the given subject. A nil
// connection yields a no-op publisher, keeping the grading path independent of
// broker availability.
func NewNATSEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	if conn == nil {
		return noopEventPublisher{}
	}

	if subject == "" {
		subject = "chalkboard.grades"
	}

	return &natsEventPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsEventPublisher) GradeCreated(_ context.Context, event GradeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return err
	}

	p.logger.Debug().Uint("grade_id", event.GradeID).Msg("grade event published")

	return nil
}

type noopEventPublisher struct{}

func (noopEventPublisher) GradeCreated(context.Context, GradeEvent) error { return nil }
