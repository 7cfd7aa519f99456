package services

import (
	"errors"

	apperrors "github.com/schoolscan/omr-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")
	ErrInternalError    = errors.New("internal server error")

	// School specific errors
	ErrSchoolNotFound      = errors.New("school not found")
	ErrSchoolDuplicateCode = errors.New("school code already exists")

	// Student specific errors
	ErrStudentNotFound      = errors.New("student not found")
	ErrStudentDuplicateCode = errors.New("student code already exists in this school")

	// Exam specific errors
	ErrExamNotFound           = errors.New("exam not found")
	ErrExamNoQuestions        = errors.New("exam has no questions")
	ErrExamChoiceCount        = errors.New("question choice count does not match exam configuration")
	ErrExamCorrectChoiceCount = errors.New("question must have exactly one correct choice")
	ErrExamVersionNotFound    = errors.New("exam version not found")

	// Grading specific errors
	ErrResultNotFound = errors.New("result not found")
	ErrAlreadyGraded  = errors.New("student already graded for this exam")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSchoolNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrExamVersionNotFound) ||
		errors.Is(err, ErrResultNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrExamNoQuestions) ||
		errors.Is(err, ErrExamChoiceCount) ||
		errors.Is(err, ErrExamCorrectChoiceCount) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSchoolDuplicateCode) ||
		errors.Is(err, ErrStudentDuplicateCode) ||
		errors.Is(err, ErrAlreadyGraded)
}
