package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolscan/omr-service/internal/services"
	"github.com/schoolscan/omr-service/internal/utils"
)

type SchoolHandler struct {
	BaseHandler
	schoolService services.SchoolService
}

func NewSchoolHandler(schoolService services.SchoolService, logger utils.Logger) *SchoolHandler {
	return &SchoolHandler{
		BaseHandler:   NewBaseHandler(logger),
		schoolService: schoolService,
	}
}

// CreateSchool registers a new school
// @Summary Create school
// @Tags schools
// @Accept json
// @Produce json
// @Param school body services.CreateSchoolRequest true "School data"
// @Success 201 {object} models.School
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /schools [post]
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	var req services.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating school", "code", req.Code)

	school, err := h.schoolService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, school)
}

// GetSchool returns one school by ID
// @Summary Get school
// @Tags schools
// @Produce json
// @Param school_id path uint true "School ID"
// @Success 200 {object} models.School
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id} [get]
func (h *SchoolHandler) GetSchool(c *gin.Context) {
	id := parseIDParam(c, "school_id")
	if id == 0 {
		return
	}

	school, err := h.schoolService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, school)
}

// ListSchools returns all schools paginated
// @Summary List schools
// @Tags schools
// @Produce json
// @Success 200 {object} ListResponse
// @Router /schools [get]
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	filters := parsePageFilters(c)

	schools, total, err := h.schoolService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Data:   schools,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// UpdateSchool updates school attributes
// @Summary Update school
// @Tags schools
// @Accept json
// @Produce json
// @Param school_id path uint true "School ID"
// @Param school body services.UpdateSchoolRequest true "School data"
// @Success 200 {object} models.School
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id} [put]
func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	id := parseIDParam(c, "school_id")
	if id == 0 {
		return
	}

	var req services.UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	school, err := h.schoolService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, school)
}

// DeleteSchool soft deletes a school
// @Summary Delete school
// @Tags schools
// @Param school_id path uint true "School ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /schools/{school_id} [delete]
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	id := parseIDParam(c, "school_id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting school", "school_id", id)

	if err := h.schoolService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SchoolHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "School not found",
		})
	case errors.Is(err, services.ErrSchoolDuplicateCode):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "School code already exists",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
