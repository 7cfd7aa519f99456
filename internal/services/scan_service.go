package services

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/schoolscan/omr-service/internal/cache"
	"github.com/schoolscan/omr-service/internal/events"
	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/omr"
	"github.com/schoolscan/omr-service/internal/repositories"
	"github.com/schoolscan/omr-service/internal/utils"
)

const (
	statsCacheTTL    = 5 * time.Minute
	recentResultsCap = 20
)

// ===== REQUEST/RESPONSE TYPES =====

type SubmitScanRequest struct {
	ExamID      uint              `json:"exam_id" validate:"required"`
	VersionCode string            `json:"version_code" validate:"required,version_code"`
	StudentCode string            `json:"student_code" validate:"required,student_code"`
	Answers     map[string]string `json:"answers" validate:"required"`
}

// ===== SERVICE INTERFACE =====

type ScanService interface {
	// SubmitScan grades one answer sheet against the version's answer key
	// and stores the result. A student is graded at most once per exam.
	SubmitScan(ctx context.Context, schoolID uint, req *SubmitScanRequest) (*models.Result, error)

	// DetectSheet runs mark recognition over a scanned sheet image using the
	// exam's layout and returns the raw detection for the client to confirm.
	DetectSheet(ctx context.Context, schoolID, examID uint, img image.Image) (*omr.Detection, error)

	GetExamStats(ctx context.Context, examID, schoolID uint) (*models.ExamStats, error)
}

type scanService struct {
	repo      repositories.Repository
	publisher events.Publisher
	cache     cache.CacheService
	logger    *slog.Logger
	validator *utils.Validator
}

func NewScanService(repo repositories.Repository, publisher events.Publisher, cacheService cache.CacheService, logger *slog.Logger, validator *utils.Validator) ScanService {
	return &scanService{
		repo:      repo,
		publisher: publisher,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

// ===== SCAN SUBMISSION =====

func (s *scanService) SubmitScan(ctx context.Context, schoolID uint, req *SubmitScanRequest) (*models.Result, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	version, err := s.repo.ExamVersion().GetByExamAndCode(ctx, req.ExamID, req.VersionCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamVersionNotFound
		}
		return nil, fmt.Errorf("failed to get exam version: %w", err)
	}

	student, err := s.repo.Student().GetByCode(ctx, schoolID, req.StudentCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if _, err := s.repo.Result().GetByExamAndStudent(ctx, req.ExamID, student.ID); err == nil {
		return nil, ErrAlreadyGraded
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing result: %w", err)
	}

	var answerKey []models.AnswerKeyEntry
	if err := json.Unmarshal(version.AnswerKey, &answerKey); err != nil {
		return nil, fmt.Errorf("failed to decode answer key: %w", err)
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	score, details := grade(answerKey, req.Answers)

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode grade details: %w", err)
	}

	totalQuestions := len(answerKey)
	percentage := 0.0
	if totalQuestions > 0 {
		percentage = round2(float64(score) / float64(totalQuestions) * 100)
	}

	result := &models.Result{
		SchoolID:       schoolID,
		ExamID:         req.ExamID,
		ExamVersionID:  version.ID,
		StudentID:      student.ID,
		Score:          score,
		TotalQuestions: totalQuestions,
		Percentage:     percentage,
		Details:        detailsJSON,
	}

	err = s.repo.WithTx(ctx, func(txRepo repositories.Repository) error {
		sheet := &models.AnswerSheet{
			SchoolID:      schoolID,
			ExamID:        req.ExamID,
			ExamVersionID: version.ID,
			StudentID:     student.ID,
			StudentCode:   req.StudentCode,
			Answers:       answersJSON,
			IsProcessed:   true,
			ScannedAt:     time.Now(),
		}
		if err := txRepo.AnswerSheet().Create(ctx, sheet); err != nil {
			return fmt.Errorf("failed to store answer sheet: %w", err)
		}

		result.AnswerSheetID = sheet.ID
		if err := txRepo.Result().Create(ctx, result); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrAlreadyGraded
			}
			return fmt.Errorf("failed to store result: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Scan graded",
		"exam_id", req.ExamID,
		"student_code", req.StudentCode,
		"version_code", req.VersionCode,
		"score", score,
		"total", totalQuestions)

	s.invalidateStatsCache(ctx, req.ExamID)
	s.publishScanEvents(ctx, schoolID, req.ExamID, student, result)

	result.Student = *student
	return result, nil
}

// grade walks the answer key in question order. An absent or empty submitted
// answer is recorded as unanswered, never as a wrong guess at "".
func grade(answerKey []models.AnswerKeyEntry, answers map[string]string) (int, []models.GradeDetail) {
	score := 0
	details := make([]models.GradeDetail, 0, len(answerKey))

	for _, entry := range answerKey {
		given, ok := answers[strconv.Itoa(entry.QuestionNumber)]

		detail := models.GradeDetail{
			QuestionNumber: entry.QuestionNumber,
			CorrectAnswer:  entry.CorrectChoice,
		}
		if ok && given != "" {
			answer := given
			detail.StudentAnswer = &answer
			detail.IsCorrect = given == entry.CorrectChoice
		}
		if detail.IsCorrect {
			score++
		}
		details = append(details, detail)
	}

	return score, details
}

func (s *scanService) publishScanEvents(ctx context.Context, schoolID, examID uint, student *models.Student, result *models.Result) {
	scanEvent := events.ScanCompletedEvent{
		ExamID:         examID,
		StudentCode:    student.StudentCode,
		StudentName:    student.FullName(),
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
	}
	if err := s.publisher.PublishSchoolEvent(ctx, schoolID, events.EventScanCompleted, scanEvent); err != nil {
		s.logger.Error("Failed to publish scan completed event", "error", err, "exam_id", examID)
	}

	stats, err := s.computeExamStats(ctx, examID, schoolID)
	if err != nil {
		s.logger.Error("Failed to compute stats for event", "error", err, "exam_id", examID)
		return
	}
	if err := s.publisher.PublishSchoolEvent(ctx, schoolID, events.EventStatsUpdated, events.StatsUpdatedEvent{Stats: stats}); err != nil {
		s.logger.Error("Failed to publish stats updated event", "error", err, "exam_id", examID)
	}
}

// ===== SHEET DETECTION =====

func (s *scanService) DetectSheet(ctx context.Context, schoolID, examID uint, img image.Image) (*omr.Detection, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID, schoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	versions, err := s.repo.ExamVersion().ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	codes := make([]string, 0, len(versions))
	for _, v := range versions {
		codes = append(codes, v.VersionCode)
	}

	detection := omr.Detect(img, omr.Options{
		TotalQuestions:     exam.TotalQuestions,
		ChoicesPerQuestion: exam.ChoicesPerQuestion,
		VersionCodes:       codes,
		ChoiceLabels:       models.ChoiceLabels[:exam.ChoicesPerQuestion],
	})

	s.logger.Debug("Sheet detected",
		"exam_id", examID,
		"student_code", detection.StudentCode,
		"answers", len(detection.Answers))

	return detection, nil
}

// ===== STATISTICS =====

func statsCacheKey(examID uint) string {
	return fmt.Sprintf("exam:stats:%d", examID)
}

func (s *scanService) GetExamStats(ctx context.Context, examID, schoolID uint) (*models.ExamStats, error) {
	if s.cache != nil {
		var cached models.ExamStats
		if err := s.cache.Get(ctx, statsCacheKey(examID), &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.computeExamStats(ctx, examID, schoolID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey(examID), stats, statsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache exam stats", "error", err, "exam_id", examID)
		}
	}
	return stats, nil
}

func (s *scanService) invalidateStatsCache(ctx context.Context, examID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey(examID)); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", "error", err, "exam_id", examID)
	}
}

func (s *scanService) computeExamStats(ctx context.Context, examID, schoolID uint) (*models.ExamStats, error) {
	if _, err := s.repo.Exam().GetByID(ctx, examID, schoolID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	results, err := s.repo.Result().ListAllByExam(ctx, examID, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	stats := &models.ExamStats{ExamID: examID, TotalScanned: len(results)}
	if len(results) == 0 {
		return stats, nil
	}

	scoreSum := 0
	percentageSum := 0.0
	stats.MaxScore = results[0].Score
	stats.MinScore = results[0].Score

	questionTotals := map[int]*models.QuestionAnalysis{}

	for _, r := range results {
		scoreSum += r.Score
		percentageSum += r.Percentage
		if r.Score > stats.MaxScore {
			stats.MaxScore = r.Score
		}
		if r.Score < stats.MinScore {
			stats.MinScore = r.Score
		}

		var details []models.GradeDetail
		if err := json.Unmarshal(r.Details, &details); err != nil {
			return nil, fmt.Errorf("failed to decode result %d details: %w", r.ID, err)
		}
		for _, d := range details {
			qa, ok := questionTotals[d.QuestionNumber]
			if !ok {
				qa = &models.QuestionAnalysis{QuestionNumber: d.QuestionNumber}
				questionTotals[d.QuestionNumber] = qa
			}
			qa.TotalCount++
			if d.IsCorrect {
				qa.CorrectCount++
			}
		}
	}

	stats.AverageScore = round2(float64(scoreSum) / float64(len(results)))
	stats.AveragePercentage = round2(percentageSum / float64(len(results)))

	for _, qa := range questionTotals {
		qa.CorrectRate = int(math.Round(float64(qa.CorrectCount) / float64(qa.TotalCount) * 100))
		stats.QuestionAnalysis = append(stats.QuestionAnalysis, *qa)
	}
	sort.Slice(stats.QuestionAnalysis, func(i, j int) bool {
		return stats.QuestionAnalysis[i].QuestionNumber < stats.QuestionAnalysis[j].QuestionNumber
	})

	// Results arrive newest first from the store; the recent window is a
	// straight prefix.
	recent := results
	if len(recent) > recentResultsCap {
		recent = recent[:recentResultsCap]
	}
	for _, r := range recent {
		stats.RecentResults = append(stats.RecentResults, models.RecentResult{
			StudentCode:    r.Student.StudentCode,
			StudentName:    r.Student.FullName(),
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage,
			ScannedAt:      r.CreatedAt,
		})
	}

	return stats, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
