package models

import "time"

// Assignment groups the whiteboard problems authored by one teacher. The share
// code is embedded in the join link handed to students.
type Assignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeacherID string    `gorm:"size:64;not null" json:"teacher_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	ShareCode string    `gorm:"size:36;uniqueIndex" json:"share_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Problems  []Problem `json:"problems,omitempty"`
}
