package dto

import "github.com/noah-isme/chalkboard-go-api/internal/models"

// StudentJoinRequest describes the payload for joining an assignment as a
// student.
type StudentJoinRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	DisplayName  string `json:"display_name" validate:"required,min=1,max=120"`
}

// StudentResponse is returned to API clients after joining.
type StudentResponse struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
}

// NewStudentResponse converts a Student model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:          model.ID,
		DisplayName: model.DisplayName,
	}
}
