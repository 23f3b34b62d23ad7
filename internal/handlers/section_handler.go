package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizmo-edu/survey-service/internal/services"
	"github.com/gizmo-edu/survey-service/internal/utils"
)

type SectionHandler struct {
	BaseHandler
	sectionService services.SectionService
}

func NewSectionHandler(sectionService services.SectionService, logger utils.Logger) *SectionHandler {
	return &SectionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sectionService: sectionService,
	}
}

// CreateSection creates a class section
// @Summary Create section
// @Tags sections
// @Accept json
// @Produce json
// @Param section body services.CreateSectionRequest true "Section data"
// @Success 201 {object} models.Section
// @Failure 409 {object} ErrorResponse
// @Router /sections [post]
func (h *SectionHandler) CreateSection(c *gin.Context) {
	var req services.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	section, err := h.sectionService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, section)
}

// GetSection retrieves a section by ID
// @Summary Get section
// @Tags sections
// @Produce json
// @Param id path uint true "Section ID"
// @Success 200 {object} models.Section
// @Failure 404 {object} ErrorResponse
// @Router /sections/{id} [get]
func (h *SectionHandler) GetSection(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	section, err := h.sectionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, section)
}

// ListSections lists sections
// @Summary List sections
// @Tags sections
// @Produce json
// @Param active_only query bool false "Active sections only"
// @Success 200 {array} models.Section
// @Router /sections [get]
func (h *SectionHandler) ListSections(c *gin.Context) {
	activeOnly := parseBoolQuery(c, "active_only", true)
	sections, err := h.sectionService.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sections)
}

// UpdateSection renames a section or changes its code
// @Summary Update section
// @Tags sections
// @Accept json
// @Produce json
// @Param id path uint true "Section ID"
// @Success 200 {object} models.Section
// @Router /sections/{id} [put]
func (h *SectionHandler) UpdateSection(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	section, err := h.sectionService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, section)
}

// DeactivateSection retires a section and its students
// @Summary Deactivate section
// @Tags sections
// @Param id path uint true "Section ID"
// @Success 204
// @Router /sections/{id} [delete]
func (h *SectionHandler) DeactivateSection(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.sectionService.Deactivate(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RestoreSection reactivates a retired section
// @Summary Restore section
// @Tags sections
// @Param id path uint true "Section ID"
// @Success 200 {object} SuccessResponse
// @Router /sections/{id}/restore [post]
func (h *SectionHandler) RestoreSection(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.sectionService.Restore(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Section restored"})
}

// GetRoster lists the students in a section
// @Summary Section roster
// @Tags sections
// @Produce json
// @Param id path uint true "Section ID"
// @Param active_only query bool false "Active students only"
// @Success 200 {array} models.User
// @Router /sections/{id}/students [get]
func (h *SectionHandler) GetRoster(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	activeOnly := parseBoolQuery(c, "active_only", true)
	students, err := h.sectionService.GetRoster(c.Request.Context(), id, activeOnly)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// SetStudentActive enables or disables a single student account
// @Summary Set student active state
// @Tags sections
// @Accept json
// @Param student_id path string true "Student ID"
// @Success 200 {object} SuccessResponse
// @Router /students/{student_id}/active [put]
func (h *SectionHandler) SetStudentActive(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.sectionService.SetStudentActive(c.Request.Context(), studentID, *req.IsActive, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Student state updated"})
}
