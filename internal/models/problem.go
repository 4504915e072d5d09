package models

import (
	"time"

	"gorm.io/datatypes"
)

// Problem is one whiteboard prompt inside an assignment. Order is 1-based and
// unique per assignment; it drives both student navigation and report column
// order. The rubric is stored as validated JSON in its wire shape.
type Problem struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AssignmentID uint           `gorm:"not null;uniqueIndex:idx_assignment_order" json:"assignment_id"`
	Order        int            `gorm:"column:sort_order;not null;uniqueIndex:idx_assignment_order" json:"order"`
	PromptText   string         `gorm:"type:text;not null" json:"prompt_text"`
	Rubric       datatypes.JSON `gorm:"type:json" json:"rubric"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Assignment   Assignment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
