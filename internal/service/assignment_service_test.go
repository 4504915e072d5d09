package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/chalkboard-go-api/internal/dto"
	"github.com/noah-isme/chalkboard-go-api/internal/models"
)

type recordingAssignmentRepo struct {
	assignmentRepoStub
	created []models.Assignment
}

func (r *recordingAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = uint(len(r.created) + 1)
	r.created = append(r.created, *assignment)
	return nil
}

func TestAssignmentCreateFillsShareCodeAndDemoTeacher(t *testing.T) {
	repo := &recordingAssignmentRepo{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewAssignmentService(repo, validate, "demo-teacher", testLogger())

	resp, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{Title: "  Fractions quiz  "})
	require.NoError(t, err)
	require.Equal(t, "Fractions quiz", resp.Title)
	require.Equal(t, "demo-teacher", resp.TeacherID)

	_, parseErr := uuid.Parse(resp.ShareCode)
	require.NoError(t, parseErr, "share code is a uuid")
}

func TestAssignmentCreateKeepsExplicitTeacher(t *testing.T) {
	repo := &recordingAssignmentRepo{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewAssignmentService(repo, validate, "demo-teacher", testLogger())

	resp, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{Title: "Quiz", TeacherID: "teacher-7"})
	require.NoError(t, err)
	require.Equal(t, "teacher-7", resp.TeacherID)
}

func TestAssignmentCreateRequiresTitle(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAssignmentService(&recordingAssignmentRepo{}, validate, "demo-teacher", testLogger())

	_, err := svc.Create(context.Background(), dto.AssignmentCreateRequest{})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestAssignmentGetByShareCode(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	repo := &assignmentRepoStub{assignments: map[uint]models.Assignment{
		3: {Title: "Fractions quiz", ShareCode: "join-code-3"},
	}}
	svc := NewAssignmentService(repo, validate, "demo-teacher", testLogger())

	resp, err := svc.GetByShareCode(context.Background(), "join-code-3")
	require.NoError(t, err)
	require.Equal(t, "Fractions quiz", resp.Title)

	_, err = svc.GetByShareCode(context.Background(), "unknown-code")
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = svc.GetByShareCode(context.Background(), "   ")
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAssignmentGetNotFound(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAssignmentService(&assignmentRepoStub{assignments: map[uint]models.Assignment{}}, validate, "demo-teacher", testLogger())

	_, err := svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
