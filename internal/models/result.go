package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnswerSheet records one scan submission exactly as the operator sent it,
// before grading touches it.
type AnswerSheet struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	SchoolID      uint   `json:"school_id" gorm:"not null;index"`
	ExamID        uint   `json:"exam_id" gorm:"not null;index"`
	ExamVersionID uint   `json:"exam_version_id" gorm:"not null"`
	StudentID     uint   `json:"student_id" gorm:"not null;index"`
	StudentCode   string `json:"student_code" gorm:"not null;size:20"`

	Answers     datatypes.JSON `json:"answers" gorm:"type:jsonb"` // map[questionNumber]label
	IsProcessed bool           `json:"is_processed" gorm:"not null;default:false"`
	ScannedAt   time.Time      `json:"scanned_at"`

	CreatedAt time.Time `json:"created_at"`
}

// Result is the authoritative grading outcome. The composite unique index on
// (exam_id, student_id) is what makes "graded at most once" hold under
// concurrent submissions, not just the service-level existence check.
type Result struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	SchoolID      uint `json:"school_id" gorm:"not null;index"`
	ExamID        uint `json:"exam_id" gorm:"not null;index:idx_results_exam_student,unique"`
	ExamVersionID uint `json:"exam_version_id" gorm:"not null"`
	StudentID     uint `json:"student_id" gorm:"not null;index:idx_results_exam_student,unique"`
	AnswerSheetID uint `json:"answer_sheet_id" gorm:"not null"`

	Score          int            `json:"score" gorm:"not null"`
	TotalQuestions int            `json:"total_questions" gorm:"not null"`
	Percentage     float64        `json:"percentage" gorm:"not null"`
	Details        datatypes.JSON `json:"details" gorm:"type:jsonb"` // []GradeDetail

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Student     Student     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Exam        Exam        `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	ExamVersion ExamVersion `json:"exam_version,omitempty" gorm:"foreignKey:ExamVersionID"`
	AnswerSheet AnswerSheet `json:"answer_sheet,omitempty" gorm:"foreignKey:AnswerSheetID"`
}

func (AnswerSheet) TableName() string { return "answer_sheets" }
func (Result) TableName() string      { return "results" }

// GradeDetail is the per-question correctness record stored in Result.Details.
// StudentAnswer is nil when the question was left unanswered.
type GradeDetail struct {
	QuestionNumber int     `json:"questionNumber"`
	StudentAnswer  *string `json:"studentAnswer"`
	CorrectAnswer  string  `json:"correctAnswer"`
	IsCorrect      bool    `json:"isCorrect"`
}
