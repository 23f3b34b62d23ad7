package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/services"
	"github.com/gizmo-edu/survey-service/internal/utils"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
}

func NewSurveyHandler(surveyService services.SurveyService, logger utils.Logger) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
	}
}

// CreateSurvey creates a new survey
// @Summary Create survey
// @Description Creates a new survey, optionally with an initial question list and section assignments
// @Tags surveys
// @Accept json
// @Produce json
// @Param survey body services.CreateSurveyRequest true "Survey data"
// @Success 201 {object} services.SurveyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /surveys [post]
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req services.CreateSurveyRequest
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

	survey, err := h.surveyService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, survey)
}

// GetSurvey retrieves a survey by ID
// @Summary Get survey
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.SurveyResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// GetSurveyWithQuestions retrieves a survey with its question list
// @Summary Get survey with questions
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.SurveyResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/details [get]
func (h *SurveyHandler) GetSurveyWithQuestions(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.GetByIDWithQuestions(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// UpdateSurvey updates survey metadata. Changing the title or description
// while completed responses exist advances the survey version.
// @Summary Update survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param survey body services.UpdateSurveyRequest true "Fields to update"
// @Success 200 {object} services.SurveyResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id} [put]
func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSurveyRequest
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

	survey, err := h.surveyService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// DeleteSurvey soft deletes a survey. Refused once responses exist.
// @Summary Delete survey
// @Tags surveys
// @Param id path uint true "Survey ID"
// @Success 204
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id} [delete]
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSurveys lists surveys visible to the caller
// @Summary List surveys
// @Tags surveys
// @Produce json
// @Success 200 {object} services.SurveyListResponse
// @Router /surveys [get]
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseSurveyFilters(c)
	result, err := h.surveyService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchSurveys searches surveys by title
// @Summary Search surveys
// @Tags surveys
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} services.SurveyListResponse
// @Router /surveys/search [get]
func (h *SurveyHandler) SearchSurveys(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Search query is required",
		})
		return
	}

	filters := h.parseSurveyFilters(c)
	result, err := h.surveyService.Search(c.Request.Context(), query, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SetSurveyActive opens or closes a survey
// @Summary Set survey active state
// @Tags surveys
// @Accept json
// @Param id path uint true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Router /surveys/{id}/active [put]
func (h *SurveyHandler) SetSurveyActive(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
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

	if err := h.surveyService.SetActive(c.Request.Context(), id, *req.IsActive, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Survey state updated"})
}

// AssignSections replaces the set of class sections a survey is assigned to
// @Summary Assign survey to sections
// @Tags surveys
// @Accept json
// @Param id path uint true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Router /surveys/{id}/sections [put]
func (h *SurveyHandler) AssignSections(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		SectionIDs []uint `json:"section_ids" binding:"required"`
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

	if err := h.surveyService.AssignSections(c.Request.Context(), id, req.SectionIDs, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Sections assigned"})
}

// ListStudentSurveys lists the open surveys assigned to the calling student
// together with their completion status
// @Summary Student survey list
// @Tags surveys
// @Produce json
// @Success 200 {array} services.StudentSurveyView
// @Router /surveys/assigned [get]
func (h *SurveyHandler) ListStudentSurveys(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	views, err := h.surveyService.ListForStudent(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// GetSurveyStats returns response counts and completion rate for a survey
// @Summary Survey statistics
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} repositories.SurveyStats
// @Router /surveys/{id}/stats [get]
func (h *SurveyHandler) GetSurveyStats(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.surveyService.GetStats(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetCreatorStats returns aggregate numbers for the calling teacher
// @Summary Creator statistics
// @Tags surveys
// @Produce json
// @Success 200 {object} repositories.CreatorStats
// @Router /surveys/creator/stats [get]
func (h *SurveyHandler) GetCreatorStats(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.surveyService.GetCreatorStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *SurveyHandler) parseSurveyFilters(c *gin.Context) repositories.SurveyFilters {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)

	return repositories.SurveyFilters{
		IsActive:  parseBoolQueryPtr(c, "is_active"),
		SectionID: parseUintQueryPtr(c, "section_id"),
		DateFrom:  parseTimeQueryPtr(c, "date_from"),
		DateTo:    parseTimeQueryPtr(c, "date_to"),
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
}
