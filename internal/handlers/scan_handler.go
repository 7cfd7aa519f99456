package handlers

import (
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolscan/omr-service/internal/services"
	"github.com/schoolscan/omr-service/internal/utils"
)

type ScanHandler struct {
	BaseHandler
	scanService services.ScanService
}

func NewScanHandler(scanService services.ScanService, logger utils.Logger) *ScanHandler {
	return &ScanHandler{
		BaseHandler: NewBaseHandler(logger),
		scanService: scanService,
	}
}

// SubmitScan grades a confirmed answer sheet
// @Summary Submit scan
// @Description Grades the submitted answers against the exam version's answer key
// @Tags scans
// @Accept json
// @Produce json
// @Param school_id path uint true "School ID"
// @Param scan body services.SubmitScanRequest true "Scan data"
// @Success 201 {object} models.Result
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /schools/{school_id}/scans [post]
func (h *ScanHandler) SubmitScan(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}

	var req services.SubmitScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting scan",
		"school_id", schoolID,
		"exam_id", req.ExamID,
		"student_code", req.StudentCode,
		"version_code", req.VersionCode)

	result, err := h.scanService.SubmitScan(c.Request.Context(), schoolID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// DetectSheet runs mark recognition on an uploaded sheet image
// @Summary Detect sheet
// @Description Reads the student code and marked answers from a scanned sheet image
// @Tags scans
// @Accept multipart/form-data
// @Produce json
// @Param school_id path uint true "School ID"
// @Param exam_id path uint true "Exam ID"
// @Param image formData file true "Scanned sheet image (PNG or JPEG)"
// @Success 200 {object} omr.Detection
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/exams/{exam_id}/scans/detect [post]
func (h *ScanHandler) DetectSheet(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	examID := parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing image file",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to open image file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported or corrupt image",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Detecting sheet",
		"school_id", schoolID,
		"exam_id", examID,
		"filename", fileHeader.Filename)

	detection, err := h.scanService.DetectSheet(c.Request.Context(), schoolID, examID, img)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detection)
}

// GetExamStats returns the aggregated statistics of an exam
// @Summary Get exam statistics
// @Tags scans
// @Produce json
// @Param school_id path uint true "School ID"
// @Param exam_id path uint true "Exam ID"
// @Success 200 {object} models.ExamStats
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/exams/{exam_id}/stats [get]
func (h *ScanHandler) GetExamStats(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	examID := parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	stats, err := h.scanService.GetExamStats(c.Request.Context(), examID, schoolID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ScanHandler) handleServiceError(c *gin.Context, err error) {
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
	case errors.Is(err, services.ErrExamVersionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Exam version not found",
		})
	case errors.Is(err, services.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Student not found",
		})
	case errors.Is(err, services.ErrAlreadyGraded):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Student already graded for this exam",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
