package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// ChoiceLabels is the fixed label alphabet; an exam uses the first
// ChoicesPerQuestion entries.
var ChoiceLabels = []string{"A", "B", "C", "D", "E", "F"}

type Exam struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	SchoolID           uint       `json:"school_id" gorm:"not null;index"`
	Title              string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description        *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Subject            string     `json:"subject" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	TotalQuestions     int        `json:"total_questions" gorm:"not null" validate:"required,min=1,max=200"`
	ChoicesPerQuestion int        `json:"choices_per_question" gorm:"not null;default:4" validate:"required,min=2,max=6"`
	Status             ExamStatus `json:"status" gorm:"default:DRAFT;index" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	School    School        `json:"-" gorm:"foreignKey:SchoolID"`
	Questions []Question    `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	Versions  []ExamVersion `json:"versions,omitempty" gorm:"foreignKey:ExamID"`

	// Computed fields (not stored)
	QuestionCount int `json:"question_count,omitempty" gorm:"-"`
	VersionCount  int `json:"version_count,omitempty" gorm:"-"`
	ResultCount   int `json:"result_count,omitempty" gorm:"-"`
}

type Question struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	ExamID         uint   `json:"exam_id" gorm:"not null;index:idx_questions_exam_number,unique"`
	QuestionNumber int    `json:"question_number" gorm:"not null;index:idx_questions_exam_number,unique" validate:"required,min=1"`
	Content        string `json:"content" gorm:"type:text;not null" validate:"required"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Choices []Choice `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`
}

type Choice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null;size:1" validate:"required,choice_label"`
	Content    string `json:"content" gorm:"type:text;not null" validate:"required"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
}

// ExamVersion is a randomized rendering of an exam, identified by a version
// code. The three jsonb structures are derived at generation time and
// replaced wholesale on regeneration.
type ExamVersion struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ExamID      uint   `json:"exam_id" gorm:"not null;index:idx_versions_exam_code,unique"`
	VersionCode string `json:"version_code" gorm:"not null;size:10;index:idx_versions_exam_code,unique" validate:"required,version_code"`

	QuestionMapping datatypes.JSON `json:"question_mapping" gorm:"type:jsonb"` // []QuestionMappingEntry
	ChoiceMapping   datatypes.JSON `json:"choice_mapping" gorm:"type:jsonb"`   // []ChoiceMappingEntry
	AnswerKey       datatypes.JSON `json:"answer_key" gorm:"type:jsonb"`       // []AnswerKeyEntry

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam Exam `json:"-" gorm:"foreignKey:ExamID"`
}

func (Exam) TableName() string        { return "exams" }
func (Question) TableName() string    { return "questions" }
func (Choice) TableName() string      { return "choices" }
func (ExamVersion) TableName() string { return "exam_versions" }

// QuestionMappingEntry maps an original question number to its shuffled
// presentation position.
type QuestionMappingEntry struct {
	OriginalNumber int `json:"originalNumber"`
	NewNumber      int `json:"newNumber"`
}

// ChoiceMappingEntry maps an original choice label to its shuffled
// presentation label, scoped to the presented question number.
type ChoiceMappingEntry struct {
	QuestionNumber int    `json:"questionNumber"`
	OriginalLabel  string `json:"originalLabel"`
	NewLabel       string `json:"newLabel"`
}

type AnswerKeyEntry struct {
	QuestionNumber int    `json:"questionNumber"`
	CorrectChoice  string `json:"correctChoice"`
}
