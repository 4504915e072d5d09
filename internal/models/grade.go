package models

import "time"

// GradedByVision marks grades produced by the vision grading pipeline,
// including its deterministic typed-answer shortcut.
const GradedByVision = "vision"

// Grade is one grading verdict for a submission. Grades are immutable and
// append-only: re-grading after a resubmission inserts a new row, and readers
// select the latest by creation time.
type Grade struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	ScoreNumeric float64   `gorm:"not null" json:"score_numeric"`
	ScoreMax     float64   `gorm:"not null;default:1" json:"score_max"`
	FeedbackText string    `gorm:"type:text" json:"feedback_text"`
	GradedBy     string    `gorm:"size:16;not null" json:"graded_by"`
	CreatedAt    time.Time `json:"created_at"`
}
