package ai

import (
	"context"
	"encoding/json"

	"github.com/noah-isme/chalkboard-go-api/pkg/rubric"
)

// GradeInput contains the artefacts the vision model needs to grade one
// whiteboard submission.
type GradeInput struct {
	Rubric     json.RawMessage // serialized rubric, already schema-validated
	PromptText string
	ImageURL   string
	WorkText   string // optional student notes
}

// GradeResult is the schema-validated verdict returned by the grader.
type GradeResult struct {
	Score     float64 `json:"score"`
	ScoreMax  float64 `json:"score_max"`
	Rationale string  `json:"rationale"`
}

// Grader describes a vision model capable of grading whiteboard images.
type Grader interface {
	Grade(ctx context.Context, input GradeInput) (GradeResult, error)
}

// RubricDraft is a generated rubric plus an optional teacher-facing
// explanation of the grading approach. The explanation is display-only and is
// never fed back into grading.
type RubricDraft struct {
	Rubric      json.RawMessage `json:"rubric"`
	Explanation string          `json:"explanation"`
}

// RubricGenerator drafts grading rubrics from a problem prompt.
type RubricGenerator interface {
	Generate(ctx context.Context, promptText string, desired rubric.Type) (json.RawMessage, error)
	GenerateWithExplanation(ctx context.Context, promptText string, desired rubric.Type) (RubricDraft, error)
}
