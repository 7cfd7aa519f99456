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

type CreateStudentRequest struct {
	StudentCode string `json:"student_code" validate:"required,student_code,max=20"`
	FirstName   string `json:"first_name" validate:"required,min=1,max=100"`
	LastName    string `json:"last_name" validate:"required,min=1,max=100"`
	Classroom   string `json:"classroom" validate:"required,min=1,max=50"`
}

type UpdateStudentRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Classroom *string `json:"classroom" validate:"omitempty,min=1,max=50"`
}

// ===== SERVICE INTERFACE =====

type StudentService interface {
	Create(ctx context.Context, schoolID uint, req *CreateStudentRequest) (*models.Student, error)
	GetByID(ctx context.Context, id, schoolID uint) (*models.Student, error)
	GetByCode(ctx context.Context, schoolID uint, studentCode string) (*models.Student, error)
	List(ctx context.Context, schoolID uint, filters repositories.StudentFilters) ([]*models.Student, int64, error)
	Update(ctx context.Context, id, schoolID uint, req *UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id, schoolID uint) error
	Classrooms(ctx context.Context, schoolID uint) ([]string, error)
}

type studentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewStudentService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) StudentService {
	return &studentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *studentService) Create(ctx context.Context, schoolID uint, req *CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.School().GetByID(ctx, schoolID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to get school: %w", err)
	}

	student := &models.Student{
		SchoolID:    schoolID,
		StudentCode: req.StudentCode,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Classroom:   req.Classroom,
	}

	if err := s.repo.Student().Create(ctx, student); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrStudentDuplicateCode
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info("Student created",
		"student_id", student.ID,
		"school_id", schoolID,
		"student_code", student.StudentCode)

	return student, nil
}

func (s *studentService) GetByID(ctx context.Context, id, schoolID uint) (*models.Student, error) {
	student, err := s.repo.Student().GetByID(ctx, id, schoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func (s *studentService) GetByCode(ctx context.Context, schoolID uint, studentCode string) (*models.Student, error) {
	student, err := s.repo.Student().GetByCode(ctx, schoolID, studentCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func (s *studentService) List(ctx context.Context, schoolID uint, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	students, total, err := s.repo.Student().List(ctx, schoolID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	return students, total, nil
}

func (s *studentService) Update(ctx context.Context, id, schoolID uint, req *UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	student, err := s.repo.Student().GetByID(ctx, id, schoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.Classroom != nil {
		student.Classroom = *req.Classroom
	}

	if err := s.repo.Student().Update(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return student, nil
}

func (s *studentService) Delete(ctx context.Context, id, schoolID uint) error {
	if _, err := s.repo.Student().GetByID(ctx, id, schoolID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("failed to get student: %w", err)
	}

	if err := s.repo.Student().SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	s.logger.Info("Student deleted", "student_id", id, "school_id", schoolID)
	return nil
}

func (s *studentService) Classrooms(ctx context.Context, schoolID uint) ([]string, error) {
	classrooms, err := s.repo.Student().Classrooms(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classrooms: %w", err)
	}
	return classrooms, nil
}
