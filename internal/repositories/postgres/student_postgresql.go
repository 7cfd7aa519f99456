package postgres

import (
	"context"

	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/repositories"
	"gorm.io/gorm"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (s *StudentPostgreSQL) Create(ctx context.Context, student *models.Student) error {
	return s.db.WithContext(ctx).Create(student).Error
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, id, schoolID uint) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).
		Where("id = ? AND school_id = ?", id, schoolID).
		First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByCode(ctx context.Context, schoolID uint, studentCode string) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).
		Where("school_id = ? AND student_code = ?", schoolID, studentCode).
		First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) List(ctx context.Context, schoolID uint, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	var students []*models.Student
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Student{}).Where("school_id = ?", schoolID)
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filters.Limit, filters.Offset)
	if err := query.Order("student_code asc").Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (s *StudentPostgreSQL) Update(ctx context.Context, student *models.Student) error {
	return s.db.WithContext(ctx).Save(student).Error
}

func (s *StudentPostgreSQL) SoftDelete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Student{}, id).Error
}

func (s *StudentPostgreSQL) Classrooms(ctx context.Context, schoolID uint) ([]string, error) {
	var classrooms []string
	err := s.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("school_id = ?", schoolID).
		Distinct("classroom").
		Order("classroom asc").
		Pluck("classroom", &classrooms).Error
	if err != nil {
		return nil, err
	}
	return classrooms, nil
}

func (s *StudentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.StudentFilters) *gorm.DB {
	if filters.Classroom != nil {
		query = query.Where("classroom = ?", *filters.Classroom)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR student_code ILIKE ?",
			pattern, pattern, pattern,
		)
	}
	return query
}
