package dto

import (
	"time"

	"github.com/noah-isme/chalkboard-go-api/internal/models"
)

// SubmissionUpsertRequest describes the payload for submitting an answer.
// Re-submitting for the same (problem, student) pair overwrites the previous
// answer rather than adding a second one.
type SubmissionUpsertRequest struct {
	ProblemID      uint   `json:"problem_id" validate:"required,gt=0"`
	StudentID      uint   `json:"student_id" validate:"required,gt=0"`
	WorkText       string `json:"work_text" validate:"omitempty,max=20000"`
	AnswerImageURL string `json:"answer_image_url" validate:"required"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID             uint      `json:"id"`
	ProblemID      uint      `json:"problem_id"`
	StudentID      uint      `json:"student_id"`
	WorkText       string    `json:"work_text"`
	AnswerImageURL string    `json:"answer_image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:             model.ID,
		ProblemID:      model.ProblemID,
		StudentID:      model.StudentID,
		WorkText:       model.WorkText,
		AnswerImageURL: model.AnswerImageURL,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
