package models

import "time"

// Submission is a student's answer to one problem: the whiteboard capture plus
// optional free-text notes, which may embed a typed final answer marker. At
// most one row exists per (problem, student); re-submission updates the row in
// place through an atomic upsert.
type Submission struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProblemID      uint      `gorm:"not null;uniqueIndex:idx_problem_student" json:"problem_id"`
	StudentID      uint      `gorm:"not null;uniqueIndex:idx_problem_student" json:"student_id"`
	WorkText       string    `gorm:"type:text" json:"work_text"`
	AnswerImageURL string    `gorm:"size:512;not null" json:"answer_image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Problem        Problem   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"problem"`
	Student        Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Grades         []Grade   `json:"grades,omitempty"`
}
