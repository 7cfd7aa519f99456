package models

import "time"

// ExamStats is the full statistics structure recomputed after every grading
// event and served by the statistics query API.
type ExamStats struct {
	ExamID            uint               `json:"exam_id"`
	TotalScanned      int                `json:"total_scanned"`
	AverageScore      float64            `json:"average_score"`
	AveragePercentage float64            `json:"average_percentage"`
	MaxScore          int                `json:"max_score"`
	MinScore          int                `json:"min_score"`
	QuestionAnalysis  []QuestionAnalysis `json:"question_analysis"`
	RecentResults     []RecentResult     `json:"recent_results"`
}

type QuestionAnalysis struct {
	QuestionNumber int `json:"question_number"`
	CorrectCount   int `json:"correct_count"`
	TotalCount     int `json:"total_count"`
	CorrectRate    int `json:"correct_rate"` // integer percentage
}

type RecentResult struct {
	StudentCode    string    `json:"student_code"`
	StudentName    string    `json:"student_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	ScannedAt      time.Time `json:"scanned_at"`
}
