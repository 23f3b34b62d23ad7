package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/services"
	"github.com/gizmo-edu/survey-service/internal/utils"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// SubmitResponse records a student's answers. One submission per student per
// survey version; a repeat attempt returns 409.
// @Summary Submit response
// @Tags responses
// @Accept json
// @Produce json
// @Param response body services.SubmitResponseRequest true "Answers"
// @Success 201 {object} services.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	var req services.SubmitResponseRequest
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

	h.LogRequest(c, "Submitting response", "survey_id", req.SurveyID)

	result, err := h.responseService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetResponse retrieves a single response with its answers
// @Summary Get response
// @Tags responses
// @Produce json
// @Param id path uint true "Response ID"
// @Success 200 {object} models.SurveyResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [get]
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	response, err := h.responseService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListSurveyResponses lists responses to a survey, filterable by version,
// section, and date range
// @Summary List survey responses
// @Tags responses
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.ResponseListResult
// @Router /surveys/{id}/responses [get]
func (h *ResponseHandler) ListSurveyResponses(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseResponseFilters(c)
	result, err := h.responseService.GetBySurvey(c.Request.Context(), surveyID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMyResponses lists the calling student's submission history
// @Summary List own responses
// @Tags responses
// @Produce json
// @Success 200 {object} services.ResponseListResult
// @Router /responses/mine [get]
func (h *ResponseHandler) ListMyResponses(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)

	result, err := h.responseService.GetByStudent(c.Request.Context(), userID, size, (page-1)*size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyStatus reports whether the calling student still needs to respond to
// a survey at its current version
// @Summary Own survey status
// @Tags responses
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.StudentSurveyStatus
// @Router /surveys/{id}/status [get]
func (h *ResponseHandler) GetMyStatus(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	status, err := h.responseService.GetStudentStatus(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *ResponseHandler) parseResponseFilters(c *gin.Context) repositories.ResponseFilters {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)

	return repositories.ResponseFilters{
		SurveyVersion: parseIntQueryPtr(c, "version"),
		SectionID:     parseUintQueryPtr(c, "section_id"),
		DateFrom:      parseTimeQueryPtr(c, "date_from"),
		DateTo:        parseTimeQueryPtr(c, "date_to"),
		Limit:         size,
		Offset:        (page - 1) * size,
	}
}
