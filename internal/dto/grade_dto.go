package dto

import "github.com/noah-isme/chalkboard-go-api/internal/models"

// GradeResponse is returned after a submission has been graded.
type GradeResponse struct {
	GradeID  uint    `json:"grade_id"`
	Score    float64 `json:"score"`
	Max      float64 `json:"max"`
	Feedback string  `json:"feedback"`
	GradedBy string  `json:"graded_by"`
}

// NewGradeResponse converts a Grade model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	return GradeResponse{
		GradeID:  model.ID,
		Score:    model.ScoreNumeric,
		Max:      model.ScoreMax,
		Feedback: model.FeedbackText,
		GradedBy: model.GradedBy,
	}
}
