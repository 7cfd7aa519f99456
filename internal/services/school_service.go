package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/repositories"
	"github.com/schoolscan/omr-service/internal/utils"
)

// ===== REQUEST/RESPONSE TYPES =====

type CreateSchoolRequest struct {
	Name    string  `json:"name" validate:"required,min=1,max=200"`
	Code    string  `json:"code" validate:"required,min=2,max=20,alphanum"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
}

type UpdateSchoolRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
}

// ===== SERVICE INTERFACE =====

type SchoolService interface {
	Create(ctx context.Context, req *CreateSchoolRequest) (*models.School, error)
	GetByID(ctx context.Context, id uint) (*models.School, error)
	List(ctx context.Context, filters repositories.PageFilters) ([]*models.School, int64, error)
	Update(ctx context.Context, id uint, req *UpdateSchoolRequest) (*models.School, error)
	Delete(ctx context.Context, id uint) error
}

type schoolService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewSchoolService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) SchoolService {
	return &schoolService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *schoolService) Create(ctx context.Context, req *CreateSchoolRequest) (*models.School, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	school := &models.School{
		Name:    req.Name,
		Code:    req.Code,
		Address: req.Address,
		Phone:   req.Phone,
	}

	if err := s.repo.School().Create(ctx, school); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrSchoolDuplicateCode
		}
		return nil, fmt.Errorf("failed to create school: %w", err)
	}

	s.logger.Info("School created", "school_id", school.ID, "code", school.Code)
	return school, nil
}

func (s *schoolService) GetByID(ctx context.Context, id uint) (*models.School, error) {
	school, err := s.repo.School().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	return school, nil
}

func (s *schoolService) List(ctx context.Context, filters repositories.PageFilters) ([]*models.School, int64, error) {
	schools, total, err := s.repo.School().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list schools: %w", err)
	}
	return schools, total, nil
}

func (s *schoolService) Update(ctx context.Context, id uint, req *UpdateSchoolRequest) (*models.School, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	school, err := s.repo.School().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to get school: %w", err)
	}

	if req.Name != nil {
		school.Name = *req.Name
	}
	if req.Address != nil {
		school.Address = req.Address
	}
	if req.Phone != nil {
		school.Phone = req.Phone
	}

	if err := s.repo.School().Update(ctx, school); err != nil {
		return nil, fmt.Errorf("failed to update school: %w", err)
	}
	return school, nil
}

func (s *schoolService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.School().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSchoolNotFound
		}
		return fmt.Errorf("failed to get school: %w", err)
	}

	if err := s.repo.School().SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete school: %w", err)
	}

	s.logger.Info("School deleted", "school_id", id)
	return nil
}
