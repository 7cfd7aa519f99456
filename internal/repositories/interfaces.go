package repositories

import (
	"context"
	"errors"

	"github.com/schoolscan/omr-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates the per-entity stores. WithTx runs fn against a
// transaction-scoped Repository; returning an error rolls back.
type Repository interface {
	School() SchoolRepository
	Student() StudentRepository
	Exam() ExamRepository
	ExamVersion() ExamVersionRepository
	AnswerSheet() AnswerSheetRepository
	Result() ResultRepository

	WithTx(ctx context.Context, fn func(Repository) error) error
}

// ===== SHARED FILTER STRUCTS =====

type PageFilters struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type StudentFilters struct {
	Classroom *string `json:"classroom"`
	Search    string  `json:"search"` // matches code, first or last name
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

type ExamFilters struct {
	Status *models.ExamStatus `json:"status"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// ===== ENTITY REPOSITORIES =====

// Soft-deleted rows are invisible to every read here; gorm's DeletedAt
// scope is the single tombstone check.

type SchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	GetByID(ctx context.Context, id uint) (*models.School, error)
	GetByCode(ctx context.Context, code string) (*models.School, error)
	List(ctx context.Context, filters PageFilters) ([]*models.School, int64, error)
	Update(ctx context.Context, school *models.School) error
	SoftDelete(ctx context.Context, id uint) error
}

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id, schoolID uint) (*models.Student, error)
	GetByCode(ctx context.Context, schoolID uint, studentCode string) (*models.Student, error)
	List(ctx context.Context, schoolID uint, filters StudentFilters) ([]*models.Student, int64, error)
	Update(ctx context.Context, student *models.Student) error
	SoftDelete(ctx context.Context, id uint) error
	Classrooms(ctx context.Context, schoolID uint) ([]string, error)
}

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id, schoolID uint) (*models.Exam, error)
	GetByIDWithDetails(ctx context.Context, id, schoolID uint) (*models.Exam, error)
	List(ctx context.Context, schoolID uint, filters ExamFilters) ([]*models.Exam, int64, error)
	Update(ctx context.Context, exam *models.Exam) error
	UpdateStatus(ctx context.Context, id uint, status models.ExamStatus) error
	SoftDelete(ctx context.Context, id uint) error
}

type ExamVersionRepository interface {
	// Upsert creates the version or replaces the mappings of an existing
	// (exam_id, version_code) row.
	Upsert(ctx context.Context, version *models.ExamVersion) error
	GetByExamAndCode(ctx context.Context, examID uint, versionCode string) (*models.ExamVersion, error)
	ListByExam(ctx context.Context, examID uint) ([]*models.ExamVersion, error)
}

type AnswerSheetRepository interface {
	Create(ctx context.Context, sheet *models.AnswerSheet) error
}

type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id, schoolID uint) (*models.Result, error)
	GetByExamAndStudent(ctx context.Context, examID, studentID uint) (*models.Result, error)
	ListByExam(ctx context.Context, examID, schoolID uint, filters PageFilters) ([]*models.Result, int64, error)
	ListByStudent(ctx context.Context, studentID, schoolID uint) ([]*models.Result, error)
	// ListAllByExam returns every result for the exam with Student and
	// ExamVersion preloaded, for statistics and export.
	ListAllByExam(ctx context.Context, examID, schoolID uint) ([]*models.Result, error)
}

// IsNotFoundError reports whether err is the storage layer's missing-row error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err came from a unique-constraint
// violation, the storage-level guard behind write-once grading.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
