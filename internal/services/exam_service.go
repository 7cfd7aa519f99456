package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/repositories"
	"github.com/schoolscan/omr-service/internal/utils"
)

// ===== REQUEST/RESPONSE TYPES =====

type CreateExamRequest struct {
	Title              string                  `json:"title" validate:"required,min=1,max=200"`
	Description        *string                 `json:"description" validate:"omitempty,max=1000"`
	Subject            string                  `json:"subject" validate:"required,min=1,max=100"`
	TotalQuestions     int                     `json:"total_questions" validate:"required,min=1,max=200"`
	ChoicesPerQuestion int                     `json:"choices_per_question" validate:"omitempty,min=2,max=6"`
	Questions          []CreateQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type CreateQuestionRequest struct {
	QuestionNumber int                   `json:"question_number" validate:"required,min=1"`
	Content        string                `json:"content" validate:"required"`
	Choices        []CreateChoiceRequest `json:"choices" validate:"required,min=2,dive"`
}

type CreateChoiceRequest struct {
	Label     string `json:"label" validate:"required,choice_label"`
	Content   string `json:"content" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type UpdateExamRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Subject     *string            `json:"subject" validate:"omitempty,min=1,max=100"`
	Status      *models.ExamStatus `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

type GenerateVersionsRequest struct {
	VersionCodes     []string `json:"version_codes" validate:"required,min=1,dive,version_code"`
	ShuffleQuestions bool     `json:"shuffle_questions"`
	ShuffleChoices   bool     `json:"shuffle_choices"`
}

// ===== SERVICE INTERFACE =====

type ExamService interface {
	Create(ctx context.Context, schoolID uint, req *CreateExamRequest) (*models.Exam, error)
	GetByID(ctx context.Context, id, schoolID uint) (*models.Exam, error)
	List(ctx context.Context, schoolID uint, filters repositories.ExamFilters) ([]*models.Exam, int64, error)
	Update(ctx context.Context, id, schoolID uint, req *UpdateExamRequest) (*models.Exam, error)
	Delete(ctx context.Context, id, schoolID uint) error

	GenerateVersions(ctx context.Context, examID, schoolID uint, req *GenerateVersionsRequest) ([]*models.ExamVersion, error)
	ListVersions(ctx context.Context, examID, schoolID uint) ([]*models.ExamVersion, error)
}

type examService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	intn      IntN
}

func NewExamService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, intn IntN) ExamService {
	if intn == nil {
		intn = DefaultIntN()
	}
	return &examService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		intn:      intn,
	}
}

// ===== CRUD OPERATIONS =====

func (s *examService) Create(ctx context.Context, schoolID uint, req *CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	choicesPerQuestion := req.ChoicesPerQuestion
	if choicesPerQuestion == 0 {
		choicesPerQuestion = 4
	}

	if err := validateQuestions(req.Questions, choicesPerQuestion); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		SchoolID:           schoolID,
		Title:              req.Title,
		Description:        req.Description,
		Subject:            req.Subject,
		TotalQuestions:     req.TotalQuestions,
		ChoicesPerQuestion: choicesPerQuestion,
		Status:             models.ExamStatusDraft,
	}

	for _, q := range req.Questions {
		question := models.Question{
			QuestionNumber: q.QuestionNumber,
			Content:        q.Content,
		}
		for _, c := range q.Choices {
			question.Choices = append(question.Choices, models.Choice{
				Label:     c.Label,
				Content:   c.Content,
				IsCorrect: c.IsCorrect,
			})
		}
		exam.Questions = append(exam.Questions, question)
	}

	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("Exam created",
		"exam_id", exam.ID,
		"school_id", schoolID,
		"title", exam.Title,
		"questions", len(exam.Questions))

	return exam, nil
}

// validateQuestions enforces the grading invariants up front: every question
// carries exactly the exam's choice count and exactly one correct choice.
func validateQuestions(questions []CreateQuestionRequest, choicesPerQuestion int) error {
	for _, q := range questions {
		if len(q.Choices) != choicesPerQuestion {
			return fmt.Errorf("question %d: %w", q.QuestionNumber, ErrExamChoiceCount)
		}
		correct := 0
		for _, c := range q.Choices {
			if c.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("question %d: %w", q.QuestionNumber, ErrExamCorrectChoiceCount)
		}
	}
	return nil
}

func (s *examService) GetByID(ctx context.Context, id, schoolID uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByIDWithDetails(ctx, id, schoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

func (s *examService) List(ctx context.Context, schoolID uint, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	exams, total, err := s.repo.Exam().List(ctx, schoolID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, total, nil
}

func (s *examService) Update(ctx context.Context, id, schoolID uint, req *UpdateExamRequest) (*models.Exam, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, id, schoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = req.Description
	}
	if req.Subject != nil {
		exam.Subject = *req.Subject
	}
	if req.Status != nil {
		exam.Status = *req.Status
	}

	if err := s.repo.Exam().Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}

	return exam, nil
}

func (s *examService) Delete(ctx context.Context, id, schoolID uint) error {
	if _, err := s.repo.Exam().GetByID(ctx, id, schoolID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to get exam: %w", err)
	}

	if err := s.repo.Exam().SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.Info("Exam deleted", "exam_id", id, "school_id", schoolID)
	return nil
}

// ===== VERSION GENERATION =====

// GenerateVersions produces one randomized exam rendering per requested
// version code: a question-order mapping, a per-question choice-label
// mapping, and the answer key derived by following both. Existing versions
// with the same code get their mappings replaced. Afterwards the exam is
// published; regenerating on a published exam leaves the status alone.
func (s *examService) GenerateVersions(ctx context.Context, examID, schoolID uint, req *GenerateVersionsRequest) ([]*models.ExamVersion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByIDWithDetails(ctx, examID, schoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	if len(exam.Questions) == 0 {
		return nil, ErrExamNoQuestions
	}
	for _, q := range exam.Questions {
		if len(q.Choices) != exam.ChoicesPerQuestion {
			return nil, fmt.Errorf("question %d: %w", q.QuestionNumber, ErrExamChoiceCount)
		}
	}

	versions := make([]*models.ExamVersion, 0, len(req.VersionCodes))

	err = s.repo.WithTx(ctx, func(txRepo repositories.Repository) error {
		for _, versionCode := range req.VersionCodes {
			version, err := s.buildVersion(exam, versionCode, req.ShuffleQuestions, req.ShuffleChoices)
			if err != nil {
				return err
			}
			if err := txRepo.ExamVersion().Upsert(ctx, version); err != nil {
				return fmt.Errorf("failed to upsert version %s: %w", versionCode, err)
			}
			versions = append(versions, version)
		}

		// DRAFT -> PUBLISHED is monotonic; republishing is a no-op.
		if exam.Status != models.ExamStatusPublished {
			if err := txRepo.Exam().UpdateStatus(ctx, examID, models.ExamStatusPublished); err != nil {
				return fmt.Errorf("failed to publish exam: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exam versions generated",
		"exam_id", examID,
		"version_codes", req.VersionCodes,
		"shuffle_questions", req.ShuffleQuestions,
		"shuffle_choices", req.ShuffleChoices)

	return versions, nil
}

func (s *examService) buildVersion(exam *models.Exam, versionCode string, shuffleQuestions, shuffleChoices bool) (*models.ExamVersion, error) {
	questionOrder := identityPerm(len(exam.Questions))
	if shuffleQuestions {
		questionOrder = shufflePerm(len(exam.Questions), s.intn)
	}

	labels := models.ChoiceLabels[:exam.ChoicesPerQuestion]

	questionMapping := make([]models.QuestionMappingEntry, 0, len(exam.Questions))
	choiceMapping := make([]models.ChoiceMappingEntry, 0, len(exam.Questions)*exam.ChoicesPerQuestion)
	answerKey := make([]models.AnswerKeyEntry, 0, len(exam.Questions))

	for newIdx, origIdx := range questionOrder {
		question := exam.Questions[origIdx]
		newNumber := newIdx + 1

		questionMapping = append(questionMapping, models.QuestionMappingEntry{
			OriginalNumber: question.QuestionNumber,
			NewNumber:      newNumber,
		})

		// Choice order is drawn independently per question, per version.
		choiceOrder := identityPerm(len(question.Choices))
		if shuffleChoices {
			choiceOrder = shufflePerm(len(question.Choices), s.intn)
		}

		for ci, origChoiceIdx := range choiceOrder {
			origChoice := question.Choices[origChoiceIdx]
			choiceMapping = append(choiceMapping, models.ChoiceMappingEntry{
				QuestionNumber: newNumber,
				OriginalLabel:  origChoice.Label,
				NewLabel:       labels[ci],
			})

			if origChoice.IsCorrect {
				answerKey = append(answerKey, models.AnswerKeyEntry{
					QuestionNumber: newNumber,
					CorrectChoice:  labels[ci],
				})
			}
		}
	}

	questionMappingJSON, err := json.Marshal(questionMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal question mapping: %w", err)
	}
	choiceMappingJSON, err := json.Marshal(choiceMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal choice mapping: %w", err)
	}
	answerKeyJSON, err := json.Marshal(answerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answer key: %w", err)
	}

	return &models.ExamVersion{
		ExamID:          exam.ID,
		VersionCode:     versionCode,
		QuestionMapping: questionMappingJSON,
		ChoiceMapping:   choiceMappingJSON,
		AnswerKey:       answerKeyJSON,
	}, nil
}

func (s *examService) ListVersions(ctx context.Context, examID, schoolID uint) ([]*models.ExamVersion, error) {
	if _, err := s.repo.Exam().GetByID(ctx, examID, schoolID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	versions, err := s.repo.ExamVersion().ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}
