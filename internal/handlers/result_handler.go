package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolscan/omr-service/internal/services"
	"github.com/schoolscan/omr-service/internal/utils"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
	}
}

// GetResult returns one result by ID
// @Summary Get result
// @Tags results
// @Produce json
// @Param school_id path uint true "School ID"
// @Param result_id path uint true "Result ID"
// @Success 200 {object} models.Result
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/results/{result_id} [get]
func (h *ResultHandler) GetResult(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	id := parseIDParam(c, "result_id")
	if id == 0 {
		return
	}

	result, err := h.resultService.GetByID(c.Request.Context(), id, schoolID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListExamResults returns the results of an exam, newest first
// @Summary List exam results
// @Tags results
// @Produce json
// @Param school_id path uint true "School ID"
// @Param exam_id path uint true "Exam ID"
// @Success 200 {object} ListResponse
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/exams/{exam_id}/results [get]
func (h *ResultHandler) ListExamResults(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	examID := parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	filters := parsePageFilters(c)

	results, total, err := h.resultService.ListByExam(c.Request.Context(), examID, schoolID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Data:   results,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// ListStudentResults returns every result of one student
// @Summary List student results
// @Tags results
// @Produce json
// @Param school_id path uint true "School ID"
// @Param student_id path uint true "Student ID"
// @Success 200 {array} models.Result
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/students/{student_id}/results [get]
func (h *ResultHandler) ListStudentResults(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	studentID := parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}

	results, err := h.resultService.ListByStudent(c.Request.Context(), studentID, schoolID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ExportExamResults downloads the exam results as an xlsx workbook
// @Summary Export exam results
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param school_id path uint true "School ID"
// @Param exam_id path uint true "Exam ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/exams/{exam_id}/results/export [get]
func (h *ResultHandler) ExportExamResults(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	examID := parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	h.LogRequest(c, "Exporting exam results", "school_id", schoolID, "exam_id", examID)

	data, filename, err := h.resultService.ExportExamResults(c.Request.Context(), examID, schoolID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *ResultHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrResultNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Result not found",
		})
	case errors.Is(err, services.ErrExamNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Exam not found",
		})
	case errors.Is(err, services.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Student not found",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
