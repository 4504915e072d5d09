package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chalkboard-go-api/internal/models"
	"github.com/noah-isme/chalkboard-go-api/pkg/ai"
)

type recordingPublisher struct {
	events []GradeEvent
	fail   error
}

func (p *recordingPublisher) GradeCreated(ctx context.Context, event GradeEvent) error {
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, event)
	return nil
}

func TestNewNATSEventPublisherNilConnIsNoop(t *testing.T) {
	publisher := NewNATSEventPublisher(nil, "chalkboard.grades", testLogger())
	require.NoError(t, publisher.GradeCreated(context.Background(), GradeEvent{GradeID: 1}))
}

func TestGradingPublishesGradeEvent(t *testing.T) {
	submissions := gradingFixture("Final answer (typed): 42")
	publisher := &recordingPublisher{}

	svc := NewGradingService(submissions, &gradeRepoStub{}, &graderStub{}, publisher, 0, testLogger())

	_, err := svc.Grade(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, publisher.events, 1)
	require.Equal(t, uint(7), publisher.events[0].SubmissionID)
	require.Equal(t, models.GradedByVision, publisher.events[0].GradedBy)
}

func TestGradingToleratesPublisherFailure(t *testing.T) {
	submissions := gradingFixture("scribbles")
	publisher := &recordingPublisher{fail: errors.New("broker down")}
	grades := &gradeRepoStub{}
	grader := &graderStub{result: ai.GradeResult{Score: 1, ScoreMax: 1, Rationale: "ok"}}

	svc := NewGradingService(submissions, grades, grader, publisher, 0, testLogger())

	resp, err := svc.Grade(context.Background(), 7)
	require.NoError(t, err, "event delivery is best-effort")
	require.Equal(t, 1.0, resp.Score)
	require.Len(t, grades.created, 1)
}
