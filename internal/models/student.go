package models

import "time"

// Student is a classroom participant who joined an assignment with a display
// name. No account or credentials are kept.
type Student struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DisplayName string    `gorm:"size:120;not null" json:"display_name"`
	Role        string    `gorm:"size:16;not null;default:student" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
