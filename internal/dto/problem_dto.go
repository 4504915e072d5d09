package dto

import (
	"encoding/json"

	"github.com/noah-isme/chalkboard-go-api/internal/models"
)

// ProblemCreateRequest describes the payload for adding a problem to an
// assignment. The assignment comes from the URL path.
type ProblemCreateRequest struct {
	Order      int    `json:"order" validate:"required,gte=1"`
	PromptText string `json:"prompt_text" validate:"required"`
}

// ProblemResponse is returned to API clients when viewing problems.
type ProblemResponse struct {
	ID           uint            `json:"id"`
	AssignmentID uint            `json:"assignment_id"`
	Order        int             `json:"order"`
	PromptText   string          `json:"prompt_text"`
	Rubric       json.RawMessage `json:"rubric"`
}

// NewProblemResponse converts a Problem model into a DTO.
func NewProblemResponse(model models.Problem) ProblemResponse {
	return ProblemResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		Order:        model.Order,
		PromptText:   model.PromptText,
		Rubric:       json.RawMessage(model.Rubric),
	}
}

// NewProblemResponseSlice converts problem models into DTOs.
func NewProblemResponseSlice(problems []models.Problem) []ProblemResponse {
	responses := make([]ProblemResponse, 0, len(problems))
	for _, problem := range problems {
		responses = append(responses, NewProblemResponse(problem))
	}

	return responses
}
