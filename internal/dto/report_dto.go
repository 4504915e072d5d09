package dto

// ProblemColumn summarizes one problem as a report column header.
type ProblemColumn struct {
	ID         uint   `json:"id"`
	Order      int    `json:"order"`
	PromptText string `json:"prompt_text"`
}

// ProblemScore is one student's score slot for one problem. Score is nil when
// the problem was attempted but not yet graded.
type ProblemScore struct {
	ProblemID uint     `json:"problem_id"`
	Score     *float64 `json:"score"`
	Max       float64  `json:"max"`
}

// Artifact links a problem to the submitted whiteboard image for teacher
// review.
type Artifact struct {
	ProblemID uint   `json:"problem_id"`
	ImageURL  string `json:"image_url"`
}

// ScoreRow aggregates one student's grades across the assignment. Totals sum
// only over problems that have a numeric grade; ungraded problems contribute
// to neither numerator nor denominator.
type ScoreRow struct {
	StudentID     uint           `json:"student_id"`
	StudentName   string         `json:"student_name"`
	ProblemScores []ProblemScore `json:"problem_scores"`
	TotalScore    float64        `json:"total_score"`
	TotalMax      float64        `json:"total_max"`
	Artifacts     []Artifact     `json:"artifacts"`
}

// ReportResponse is the full per-assignment scorecard.
type ReportResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	Problems   []ProblemColumn    `json:"problems"`
	Rows       []ScoreRow         `json:"rows"`
}
