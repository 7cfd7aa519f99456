package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/repositories"
	"github.com/schoolscan/omr-service/internal/services"
	"github.com/schoolscan/omr-service/internal/utils"
)

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// CreateExam creates an exam with its questions and choices
// @Summary Create exam
// @Tags exams
// @Accept json
// @Produce json
// @Param school_id path uint true "School ID"
// @Param exam body services.CreateExamRequest true "Exam data"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Router /schools/{school_id}/exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}

	var req services.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating exam", "school_id", schoolID, "title", req.Title)

	exam, err := h.examService.Create(c.Request.Context(), schoolID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// GetExam returns an exam with questions, choices and versions
// @Summary Get exam
// @Tags exams
// @Produce json
// @Param school_id path uint true "School ID"
// @Param exam_id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/exams/{exam_id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	id := parseIDParam(c, "exam_id")
	if id == 0 {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), id, schoolID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// ListExams lists exams with optional status filter
// @Summary List exams
// @Tags exams
// @Produce json
// @Param school_id path uint true "School ID"
// @Param status query string false "Filter by status" Enums(DRAFT, PUBLISHED, ARCHIVED)
// @Success 200 {object} ListResponse
// @Router /schools/{school_id}/exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}

	page := parsePageFilters(c)
	filters := repositories.ExamFilters{
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if status := c.Query("status"); status != "" {
		s := models.ExamStatus(status)
		filters.Status = &s
	}

	exams, total, err := h.examService.List(c.Request.Context(), schoolID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Data:   exams,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// UpdateExam updates exam attributes
// @Summary Update exam
// @Tags exams
// @Accept json
// @Produce json
// @Param school_id path uint true "School ID"
// @Param exam_id path uint true "Exam ID"
// @Param exam body services.UpdateExamRequest true "Exam data"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/exams/{exam_id} [put]
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	id := parseIDParam(c, "exam_id")
	if id == 0 {
		return
	}

	var req services.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), id, schoolID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// DeleteExam soft deletes an exam
// @Summary Delete exam
// @Tags exams
// @Param school_id path uint true "School ID"
// @Param exam_id path uint true "Exam ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/exams/{exam_id} [delete]
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	id := parseIDParam(c, "exam_id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting exam", "school_id", schoolID, "exam_id", id)

	if err := h.examService.Delete(c.Request.Context(), id, schoolID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GenerateVersions creates shuffled exam versions and publishes the exam
// @Summary Generate exam versions
// @Tags exams
// @Accept json
// @Produce json
// @Param school_id path uint true "School ID"
// @Param exam_id path uint true "Exam ID"
// @Param request body services.GenerateVersionsRequest true "Version codes and shuffle flags"
// @Success 201 {array} models.ExamVersion
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/exams/{exam_id}/versions [post]
func (h *ExamHandler) GenerateVersions(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	examID := parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	var req services.GenerateVersionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Generating exam versions",
		"school_id", schoolID,
		"exam_id", examID,
		"version_codes", req.VersionCodes)

	versions, err := h.examService.GenerateVersions(c.Request.Context(), examID, schoolID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, versions)
}

// ListVersions returns the generated versions of an exam
// @Summary List exam versions
// @Tags exams
// @Produce json
// @Param school_id path uint true "School ID"
// @Param exam_id path uint true "Exam ID"
// @Success 200 {array} models.ExamVersion
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/exams/{exam_id}/versions [get]
func (h *ExamHandler) ListVersions(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	examID := parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	versions, err := h.examService.ListVersions(c.Request.Context(), examID, schoolID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, versions)
}

func (h *ExamHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrExamNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Exam not found",
		})
	case errors.Is(err, services.ErrExamNoQuestions):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Exam has no questions",
		})
	case errors.Is(err, services.ErrExamChoiceCount), errors.Is(err, services.ErrExamCorrectChoiceCount):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid exam questions",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
