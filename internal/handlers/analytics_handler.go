package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/services"
	"github.com/gizmo-edu/survey-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	exportService    services.ExportService
}

func NewAnalyticsHandler(
	analyticsService services.AnalyticsService,
	exportService services.ExportService,
	logger utils.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// GetSurveyAnalytics returns per-question aggregates, section completion,
// and the version breakdown for a survey
// @Summary Survey analytics
// @Tags analytics
// @Produce json
// @Param id path uint true "Survey ID"
// @Param version query int false "Restrict to one survey version"
// @Param section_id query uint false "Restrict to one section"
// @Success 200 {object} models.SurveyAnalytics
// @Failure 403 {object} ErrorResponse
// @Router /surveys/{id}/analytics [get]
func (h *AnalyticsHandler) GetSurveyAnalytics(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseAnalyticsFilters(c)
	analytics, err := h.analyticsService.GetSurveyAnalytics(c.Request.Context(), surveyID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetQuestionAnalytics returns the aggregate for a single question
// @Summary Question analytics
// @Tags analytics
// @Produce json
// @Param id path uint true "Survey ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} models.QuestionAnalytics
// @Router /surveys/{id}/analytics/questions/{question_id} [get]
func (h *AnalyticsHandler) GetQuestionAnalytics(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}
	questionID := parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseAnalyticsFilters(c)
	analytics, err := h.analyticsService.GetQuestionAnalytics(c.Request.Context(), surveyID, questionID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetDashboard returns the calling teacher's landing page summary
// @Summary Teacher dashboard
// @Tags analytics
// @Produce json
// @Success 200 {object} models.DashboardSummary
// @Router /dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportResponses downloads a survey's responses as CSV or XLSX
// @Summary Export responses
// @Tags analytics
// @Produce octet-stream
// @Param id path uint true "Survey ID"
// @Param format query string false "csv or xlsx" default(xlsx)
// @Success 200 {file} binary
// @Router /surveys/{id}/export [get]
func (h *AnalyticsHandler) ExportResponses(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	req := &models.ExportRequest{
		SurveyID:  surveyID,
		Format:    format,
		SectionID: parseUintQueryPtr(c, "section_id"),
		Version:   parseIntQueryPtr(c, "version"),
		DateFrom:  parseTimeQueryPtr(c, "date_from"),
		DateTo:    parseTimeQueryPtr(c, "date_to"),
	}

	h.LogRequest(c, "Exporting responses", "survey_id", surveyID, "format", format)

	result, err := h.exportService.ExportResponses(c.Request.Context(), req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendFile(c, result)
}

// ExportAnalytics downloads the aggregated analytics workbook
// @Summary Export analytics
// @Tags analytics
// @Produce octet-stream
// @Param id path uint true "Survey ID"
// @Success 200 {file} binary
// @Router /surveys/{id}/analytics/export [get]
func (h *AnalyticsHandler) ExportAnalytics(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	result, err := h.exportService.ExportAnalytics(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendFile(c, result)
}

func (h *AnalyticsHandler) sendFile(c *gin.Context, result *models.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *AnalyticsHandler) parseAnalyticsFilters(c *gin.Context) repositories.ResponseFilters {
	return repositories.ResponseFilters{
		SurveyVersion: parseIntQueryPtr(c, "version"),
		SectionID:     parseUintQueryPtr(c, "section_id"),
		DateFrom:      parseTimeQueryPtr(c, "date_from"),
		DateTo:        parseTimeQueryPtr(c, "date_to"),
	}
}
