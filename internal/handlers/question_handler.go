package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/services"
	"github.com/gizmo-edu/survey-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// ApplyChanges applies a batch of question edits to a survey in one unit of
// work. The response reports whether the survey version advanced.
// @Summary Apply question changes
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param change body services.QuestionChange true "Question edits"
// @Success 200 {object} services.QuestionChangeResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id}/questions/changes [post]
func (h *QuestionHandler) ApplyChanges(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	var change services.QuestionChange
	if err := c.ShouldBindJSON(&change); err != nil {
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

	result, err := h.questionService.ApplyQuestionChange(c.Request.Context(), surveyID, &change, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AddQuestion appends a single question to a survey
// @Summary Add question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param question body services.AddQuestionRequest true "Question data"
// @Success 201 {object} services.QuestionChangeResult
// @Failure 400 {object} ErrorResponse
// @Router /surveys/{id}/questions [post]
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	var req services.AddQuestionRequest
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

	result, err := h.questionService.AddQuestion(c.Request.Context(), surveyID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// UpdateQuestion edits a single question in place
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} services.QuestionChangeResult
// @Router /surveys/{id}/questions/{question_id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}
	questionID := parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req services.UpdateQuestionRequest
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

	result, err := h.questionService.UpdateQuestion(c.Request.Context(), surveyID, questionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeactivateQuestion hides a question from new submissions. Past answers
// are kept.
// @Summary Deactivate question
// @Tags questions
// @Param id path uint true "Survey ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} services.QuestionChangeResult
// @Router /surveys/{id}/questions/{question_id} [delete]
func (h *QuestionHandler) DeactivateQuestion(c *gin.Context) {
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

	result, err := h.questionService.DeactivateQuestion(c.Request.Context(), surveyID, questionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RestoreQuestion brings a deactivated question back
// @Summary Restore question
// @Tags questions
// @Param id path uint true "Survey ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} services.QuestionChangeResult
// @Router /surveys/{id}/questions/{question_id}/restore [post]
func (h *QuestionHandler) RestoreQuestion(c *gin.Context) {
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

	result, err := h.questionService.RestoreQuestion(c.Request.Context(), surveyID, questionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReorderQuestions updates display positions. Reordering never advances the
// survey version.
// @Summary Reorder questions
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} services.QuestionChangeResult
// @Router /surveys/{id}/questions/reorder [put]
func (h *QuestionHandler) ReorderQuestions(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	var req struct {
		Positions []repositories.QuestionPosition `json:"positions" binding:"required"`
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

	result, err := h.questionService.ReorderQuestions(c.Request.Context(), surveyID, req.Positions, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListQuestions returns a survey's questions in display order
// @Summary List questions
// @Tags questions
// @Produce json
// @Param id path uint true "Survey ID"
// @Param include_inactive query bool false "Include deactivated questions"
// @Success 200 {array} models.Question
// @Router /surveys/{id}/questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	surveyID := parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	includeInactive := parseBoolQuery(c, "include_inactive", false)
	questions, err := h.questionService.GetBySurvey(c.Request.Context(), surveyID, includeInactive, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}
