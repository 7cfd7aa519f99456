package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ===== SERVICE INTERFACE =====

type ResultService interface {
	GetByID(ctx context.Context, id, schoolID uint) (*models.Result, error)
	ListByExam(ctx context.Context, examID, schoolID uint, filters repositories.PageFilters) ([]*models.Result, int64, error)
	ListByStudent(ctx context.Context, studentID, schoolID uint) ([]*models.Result, error)

	// ExportExamResults renders every result of the exam as an xlsx
	// workbook, one row per student ordered by student code.
	ExportExamResults(ctx context.Context, examID, schoolID uint) ([]byte, string, error)
}

type resultService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewResultService(repo repositories.Repository, logger *slog.Logger) ResultService {
	return &resultService{
		repo:   repo,
		logger: logger,
	}
}

func (s *resultService) GetByID(ctx context.Context, id, schoolID uint) (*models.Result, error) {
	result, err := s.repo.Result().GetByID(ctx, id, schoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return result, nil
}

func (s *resultService) ListByExam(ctx context.Context, examID, schoolID uint, filters repositories.PageFilters) ([]*models.Result, int64, error) {
	if _, err := s.repo.Exam().GetByID(ctx, examID, schoolID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, 0, ErrExamNotFound
		}
		return nil, 0, fmt.Errorf("failed to get exam: %w", err)
	}

	results, total, err := s.repo.Result().ListByExam(ctx, examID, schoolID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list results: %w", err)
	}
	return results, total, nil
}

func (s *resultService) ListByStudent(ctx context.Context, studentID, schoolID uint) ([]*models.Result, error) {
	if _, err := s.repo.Student().GetByID(ctx, studentID, schoolID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	results, err := s.repo.Result().ListByStudent(ctx, studentID, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

var exportHeaders = []string{"Student Code", "Student Name", "Classroom", "Version", "Score", "Total Questions", "Percentage", "Scanned At"}

func (s *resultService) ExportExamResults(ctx context.Context, examID, schoolID uint) ([]byte, string, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID, schoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrExamNotFound
		}
		return nil, "", fmt.Errorf("failed to get exam: %w", err)
	}

	results, err := s.repo.Result().ListAllByExam(ctx, examID, schoolID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list results: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Student.StudentCode < results[j].Student.StudentCode
	})

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	sheet := "Results"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, r := range results {
		row := i + 2
		values := []interface{}{
			r.Student.StudentCode,
			r.Student.FullName(),
			r.Student.Classroom,
			r.ExamVersion.VersionCode,
			r.Score,
			r.TotalQuestions,
			r.Percentage,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to encode workbook: %w", err)
	}

	filename := fmt.Sprintf("exam_%d_results.xlsx", exam.ID)

	s.logger.Info("Exam results exported",
		"exam_id", examID,
		"school_id", schoolID,
		"rows", len(results))

	return buf.Bytes(), filename, nil
}
