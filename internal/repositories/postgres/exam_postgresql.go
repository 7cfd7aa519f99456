package postgres

import (
	"context"

	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db}
}

// Create persists the exam together with any nested questions and choices
// in one insert graph.
func (e *ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Create(exam).Error
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, id, schoolID uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).
		Where("id = ? AND school_id = ?", id, schoolID).
		First(&exam).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) GetByIDWithDetails(ctx context.Context, id, schoolID uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number asc")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("label asc")
		}).
		Preload("Versions").
		Where("id = ? AND school_id = ?", id, schoolID).
		First(&exam).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) List(ctx context.Context, schoolID uint, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var exams []*models.Exam
	var total int64

	query := e.db.WithContext(ctx).Model(&models.Exam{}).Where("school_id = ?", schoolID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filters.Limit, filters.Offset)
	if err := query.Order("created_at desc").Find(&exams).Error; err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (e *ExamPostgreSQL) Update(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Save(exam).Error
}

func (e *ExamPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.ExamStatus) error {
	return e.db.WithContext(ctx).
		Model(&models.Exam{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (e *ExamPostgreSQL) SoftDelete(ctx context.Context, id uint) error {
	return e.db.WithContext(ctx).Delete(&models.Exam{}, id).Error
}

type ExamVersionPostgreSQL struct {
	db *gorm.DB
}

func NewExamVersionPostgreSQL(db *gorm.DB) repositories.ExamVersionRepository {
	return &ExamVersionPostgreSQL{db: db}
}

// Upsert replaces the derived mappings when the (exam_id, version_code) row
// already exists; regeneration never duplicates a version.
func (v *ExamVersionPostgreSQL) Upsert(ctx context.Context, version *models.ExamVersion) error {
	return v.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "exam_id"}, {Name: "version_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"question_mapping", "choice_mapping", "answer_key", "updated_at",
			}),
		}).
		Create(version).Error
}

func (v *ExamVersionPostgreSQL) GetByExamAndCode(ctx context.Context, examID uint, versionCode string) (*models.ExamVersion, error) {
	var version models.ExamVersion
	if err := v.db.WithContext(ctx).
		Where("exam_id = ? AND version_code = ?", examID, versionCode).
		First(&version).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

func (v *ExamVersionPostgreSQL) ListByExam(ctx context.Context, examID uint) ([]*models.ExamVersion, error) {
	var versions []*models.ExamVersion
	if err := v.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("version_code asc").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}
