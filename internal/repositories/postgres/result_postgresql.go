package postgres

import (
	"context"

	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/repositories"
	"gorm.io/gorm"
)

type AnswerSheetPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerSheetPostgreSQL(db *gorm.DB) repositories.AnswerSheetRepository {
	return &AnswerSheetPostgreSQL{db: db}
}

func (a *AnswerSheetPostgreSQL) Create(ctx context.Context, sheet *models.AnswerSheet) error {
	return a.db.WithContext(ctx).Create(sheet).Error
}

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) Create(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, id, schoolID uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Exam").
		Preload("ExamVersion").
		Preload("AnswerSheet").
		Where("id = ? AND school_id = ?", id, schoolID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) GetByExamAndStudent(ctx context.Context, examID, studentID uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) ListByExam(ctx context.Context, examID, schoolID uint, filters repositories.PageFilters) ([]*models.Result, int64, error) {
	var results []*models.Result
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Result{}).
		Where("exam_id = ? AND school_id = ?", examID, schoolID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filters.Limit, filters.Offset)
	if err := query.
		Preload("Student").
		Preload("ExamVersion").
		Order("created_at desc").
		Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r *ResultPostgreSQL) ListByStudent(ctx context.Context, studentID, schoolID uint) ([]*models.Result, error) {
	var results []*models.Result
	if err := r.db.WithContext(ctx).
		Preload("Exam").
		Preload("ExamVersion").
		Where("student_id = ? AND school_id = ?", studentID, schoolID).
		Order("created_at desc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ResultPostgreSQL) ListAllByExam(ctx context.Context, examID, schoolID uint) ([]*models.Result, error) {
	var results []*models.Result
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("ExamVersion").
		Where("exam_id = ? AND school_id = ?", examID, schoolID).
		Order("created_at desc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
