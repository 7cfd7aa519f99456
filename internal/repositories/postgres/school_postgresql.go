package postgres

import (
	"context"

	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/repositories"
	"gorm.io/gorm"
)

type SchoolPostgreSQL struct {
	db *gorm.DB
}

func NewSchoolPostgreSQL(db *gorm.DB) repositories.SchoolRepository {
	return &SchoolPostgreSQL{db: db}
}

func (s *SchoolPostgreSQL) Create(ctx context.Context, school *models.School) error {
	return s.db.WithContext(ctx).Create(school).Error
}

func (s *SchoolPostgreSQL) GetByID(ctx context.Context, id uint) (*models.School, error) {
	var school models.School
	if err := s.db.WithContext(ctx).First(&school, id).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

func (s *SchoolPostgreSQL) GetByCode(ctx context.Context, code string) (*models.School, error) {
	var school models.School
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&school).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

func (s *SchoolPostgreSQL) List(ctx context.Context, filters repositories.PageFilters) ([]*models.School, int64, error) {
	var schools []*models.School
	var total int64

	query := s.db.WithContext(ctx).Model(&models.School{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filters.Limit, filters.Offset)
	if err := query.Order("name asc").Find(&schools).Error; err != nil {
		return nil, 0, err
	}

	return schools, total, nil
}

func (s *SchoolPostgreSQL) Update(ctx context.Context, school *models.School) error {
	return s.db.WithContext(ctx).Save(school).Error
}

func (s *SchoolPostgreSQL) SoftDelete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.School{}, id).Error
}

func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
