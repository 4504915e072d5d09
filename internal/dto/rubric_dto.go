package dto

import "encoding/json"

// RubricGenerateRequest asks the model to draft a rubric for a problem.
type RubricGenerateRequest struct {
	PromptText string `json:"prompt_text" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=numeric_match one_of_match text_criteria"`
}

// RubricSaveRequest carries a teacher-edited rubric for persistence. The body
// is validated against the closed rubric schema before it is stored.
type RubricSaveRequest struct {
	Rubric json.RawMessage `json:"rubric" validate:"required"`
}

// RubricResponse is returned by the generation and suggestion endpoints.
// Explanation is only populated by the suggestion variant.
type RubricResponse struct {
	Rubric      json.RawMessage `json:"rubric"`
	Explanation string          `json:"explanation,omitempty"`
}
