package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolscan/omr-service/internal/repositories"
	"github.com/schoolscan/omr-service/internal/services"
	"github.com/schoolscan/omr-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	studentService services.StudentService
}

func NewStudentHandler(studentService services.StudentService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    NewBaseHandler(logger),
		studentService: studentService,
	}
}

// CreateStudent enrolls a student in a school
// @Summary Create student
// @Tags students
// @Accept json
// @Produce json
// @Param school_id path uint true "School ID"
// @Param student body services.CreateStudentRequest true "Student data"
// @Success 201 {object} models.Student
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /schools/{school_id}/students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}

	var req services.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating student", "school_id", schoolID, "student_code", req.StudentCode)

	student, err := h.studentService.Create(c.Request.Context(), schoolID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, student)
}

// GetStudent returns one student
// @Summary Get student
// @Tags students
// @Produce json
// @Param school_id path uint true "School ID"
// @Param student_id path uint true "Student ID"
// @Success 200 {object} models.Student
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/students/{student_id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	id := parseIDParam(c, "student_id")
	if id == 0 {
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id, schoolID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// ListStudents lists students with classroom and search filters
// @Summary List students
// @Tags students
// @Produce json
// @Param school_id path uint true "School ID"
// @Param classroom query string false "Filter by classroom"
// @Param search query string false "Match code or name"
// @Success 200 {object} ListResponse
// @Router /schools/{school_id}/students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}

	page := parsePageFilters(c)
	filters := repositories.StudentFilters{
		Search: c.Query("search"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if classroom := c.Query("classroom"); classroom != "" {
		filters.Classroom = &classroom
	}

	students, total, err := h.studentService.List(c.Request.Context(), schoolID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Data:   students,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// UpdateStudent updates student attributes
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Param school_id path uint true "School ID"
// @Param student_id path uint true "Student ID"
// @Param student body services.UpdateStudentRequest true "Student data"
// @Success 200 {object} models.Student
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/students/{student_id} [put]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	id := parseIDParam(c, "student_id")
	if id == 0 {
		return
	}

	var req services.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, schoolID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, student)
}

// DeleteStudent soft deletes a student
// @Summary Delete student
// @Tags students
// @Param school_id path uint true "School ID"
// @Param student_id path uint true "Student ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id}/students/{student_id} [delete]
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	id := parseIDParam(c, "student_id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting student", "school_id", schoolID, "student_id", id)

	if err := h.studentService.Delete(c.Request.Context(), id, schoolID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListClassrooms returns the distinct classrooms of a school
// @Summary List classrooms
// @Tags students
// @Produce json
// @Param school_id path uint true "School ID"
// @Success 200 {object} SuccessResponse
// @Router /schools/{school_id}/classrooms [get]
func (h *StudentHandler) ListClassrooms(c *gin.Context) {
	schoolID := parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}

	classrooms, err := h.studentService.Classrooms(c.Request.Context(), schoolID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Classrooms retrieved",
		Data:    classrooms,
	})
}

func (h *StudentHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Student not found",
		})
	case errors.Is(err, services.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "School not found",
		})
	case errors.Is(err, services.ErrStudentDuplicateCode):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Student code already exists in this school",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
