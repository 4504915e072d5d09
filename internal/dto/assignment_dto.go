package dto

import (
	"time"

	"github.com/noah-isme/chalkboard-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
// TeacherID is optional; the configured demo teacher is used when absent.
type AssignmentCreateRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=255"`
	TeacherID string `json:"teacher_id" validate:"omitempty,max=64"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID        uint      `json:"id"`
	TeacherID string    `json:"teacher_id"`
	Title     string    `json:"title"`
	ShareCode string    `json:"share_code"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:        model.ID,
		TeacherID: model.TeacherID,
		Title:     model.Title,
		ShareCode: model.ShareCode,
		CreatedAt: model.CreatedAt,
	}
}
