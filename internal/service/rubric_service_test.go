package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/models"
	"github.com/noah-isme/chalkboard-go-api/pkg/ai"
	"github.com/noah-isme/chalkboard-go-api/pkg/rubric"
)

type rubricGeneratorStub struct {
	generated    json.RawMessage
	draft        ai.RubricDraft
	err          error
	generateHits int
}

func (g *rubricGeneratorStub) Generate(ctx context.Context, promptText string, desired rubric.Type) (json.RawMessage, error) {
	g.generateHits++
	if g.err != nil {
		return nil, g.err
	}
	return g.generated, nil
}

func (g *rubricGeneratorStub) GenerateWithExplanation(ctx context.Context, promptText string, desired rubric.Type) (ai.RubricDraft, error) {
	if g.err != nil {
		return ai.RubricDraft{}, g.err
	}
	return g.draft, nil
}

func validRubricJSON() json.RawMessage {
	return json.RawMessage(`{"type":"text_criteria","instructions":"mention the theorem by name","partial_credit_rules":[]}`)
}

func TestRubricGeneratePersists(t *testing.T) {
	problems := &problemRepoStub{problems: []models.Problem{{ID: 5, AssignmentID: 1, Order: 1, PromptText: "Prove it."}}}
	generator := &rubricGeneratorStub{generated: validRubricJSON()}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewRubricService(problems, generator, validate, testLogger())

	resp, err := svc.Generate(context.Background(), 5, dto.RubricGenerateRequest{PromptText: "Prove it.", Type: "text_criteria"})
	require.NoError(t, err)
	require.JSONEq(t, string(validRubricJSON()), string(resp.Rubric))
	require.JSONEq(t, string(validRubricJSON()), string(problems.problems[0].Rubric))
}

func TestRubricGenerateUnknownProblem(t *testing.T) {
	generator := &rubricGeneratorStub{generated: validRubricJSON()}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewRubricService(&problemRepoStub{}, generator, validate, testLogger())

	_, err := svc.Generate(context.Background(), 5, dto.RubricGenerateRequest{PromptText: "x", Type: "text_criteria"})
	require.ErrorIs(t, err, ErrProblemNotFound)
	require.Zero(t, generator.generateHits, "no model call for an unknown problem")
}

func TestRubricGenerateRejectsUnknownType(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewRubricService(&problemRepoStub{}, &rubricGeneratorStub{}, validate, testLogger())

	_, err := svc.Generate(context.Background(), 5, dto.RubricGenerateRequest{PromptText: "x", Type: "exact_match"})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestRubricSuggestDoesNotPersist(t *testing.T) {
	problems := &problemRepoStub{problems: []models.Problem{{ID: 5}}}
	generator := &rubricGeneratorStub{draft: ai.RubricDraft{
		Rubric:      validRubricJSON(),
		Explanation: "Grades leniency on phrasing.",
	}}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewRubricService(problems, generator, validate, testLogger())

	resp, err := svc.Suggest(context.Background(), dto.RubricGenerateRequest{PromptText: "x", Type: "text_criteria"})
	require.NoError(t, err)
	require.Equal(t, "Grades leniency on phrasing.", resp.Explanation)
	require.Empty(t, problems.problems[0].Rubric, "suggestions never touch storage")
}

func TestRubricSaveNormalizesAndStores(t *testing.T) {
	problems := &problemRepoStub{problems: []models.Problem{{ID: 5}}}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewRubricService(problems, &rubricGeneratorStub{}, validate, testLogger())

	err := svc.Save(context.Background(), 5, dto.RubricSaveRequest{
		Rubric: json.RawMessage(`{"type":"one_of_match","acceptable_strings":["triangle"],"instructions":"name it","partial_credit_rules":[]}`),
	})
	require.NoError(t, err)
	require.Contains(t, string(problems.problems[0].Rubric), `"one_of_match"`)
}

func TestRubricSaveRejectsInvalid(t *testing.T) {
	problems := &problemRepoStub{problems: []models.Problem{{ID: 5}}}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewRubricService(problems, &rubricGeneratorStub{}, validate, testLogger())

	err := svc.Save(context.Background(), 5, dto.RubricSaveRequest{
		Rubric: json.RawMessage(`{"type":"numeric_match","instructions":"no target","partial_credit_rules":[]}`),
	})
	require.ErrorIs(t, err, rubric.ErrSchemaViolation)
	require.Empty(t, problems.problems[0].Rubric, "invalid rubrics never reach persistence")
}

func TestRubricSaveUnknownProblem(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewRubricService(&problemRepoStub{}, &rubricGeneratorStub{}, validate, testLogger())

	err := svc.Save(context.Background(), 99, dto.RubricSaveRequest{Rubric: validRubricJSON()})
	require.ErrorIs(t, err, ErrProblemNotFound)
}

func TestRubricGenerateSurfacesModelFailure(t *testing.T) {
	problems := &problemRepoStub{problems: []models.Problem{{ID: 5}}}
	generator := &rubricGeneratorStub{err: errors.New("model unavailable")}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewRubricService(problems, generator, validate, testLogger())

	_, err := svc.Generate(context.Background(), 5, dto.RubricGenerateRequest{PromptText: "x", Type: "text_criteria"})
	require.Error(t, err)
	require.Empty(t, problems.problems[0].Rubric)
}
