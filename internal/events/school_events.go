package events

import (
	"time"

	"github.com/schoolscan/omr-service/internal/models"
)

// EventName identifies the notification being broadcast to a topic.
type EventName string

const (
	// Published to the school topic after each successful grading.
	EventScanCompleted EventName = "exam.scan.completed"
	EventStatsUpdated  EventName = "exam.stats.updated"
)

// SchoolEvent is the envelope for every notification published to a
// school-scoped topic.
type SchoolEvent struct {
	ID        string      `json:"id"`
	Name      EventName   `json:"name"`
	SchoolID  uint        `json:"school_id"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Data      interface{} `json:"data"`
}

// ScanCompletedEvent announces one graded answer sheet: who was scanned and
// how they scored.
type ScanCompletedEvent struct {
	ExamID         uint    `json:"exam_id"`
	StudentCode    string  `json:"student_code"`
	StudentName    string  `json:"student_name"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
}

// StatsUpdatedEvent carries the fully recomputed statistics for live
// dashboards.
type StatsUpdatedEvent struct {
	Stats *models.ExamStats `json:"stats"`
}
