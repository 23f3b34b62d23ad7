package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/gizmo-edu/survey-service/internal/services"
	"github.com/gizmo-edu/survey-service/internal/utils"
)

type HandlerManager struct {
	surveyHandler    *SurveyHandler
	questionHandler  *QuestionHandler
	responseHandler  *ResponseHandler
	analyticsHandler *AnalyticsHandler
	sectionHandler   *SectionHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		surveyHandler:    NewSurveyHandler(serviceManager.Survey(), logger),
		questionHandler:  NewQuestionHandler(serviceManager.Question(), logger),
		responseHandler:  NewResponseHandler(serviceManager.Response(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), serviceManager.Export(), logger),
		sectionHandler:   NewSectionHandler(serviceManager.Section(), logger),
	}
}

// SetupRoutes sets up all API routes. The auth middleware applies to the
// API group only; the health endpoint stays open for probes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "survey-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(auth)
	{
		// Survey routes
		surveys := v1.Group("/surveys")
		{
			surveys.POST("", hm.surveyHandler.CreateSurvey)
			surveys.GET("", hm.surveyHandler.ListSurveys)
			surveys.GET("/search", hm.surveyHandler.SearchSurveys)
			surveys.GET("/assigned", hm.surveyHandler.ListStudentSurveys)
			surveys.GET("/creator/stats", hm.surveyHandler.GetCreatorStats)
			surveys.GET("/:id", hm.surveyHandler.GetSurvey)
			surveys.GET("/:id/details", hm.surveyHandler.GetSurveyWithQuestions)
			surveys.PUT("/:id", hm.surveyHandler.UpdateSurvey)
			surveys.DELETE("/:id", hm.surveyHandler.DeleteSurvey)
			surveys.PUT("/:id/active", hm.surveyHandler.SetSurveyActive)
			surveys.PUT("/:id/sections", hm.surveyHandler.AssignSections)
			surveys.GET("/:id/stats", hm.surveyHandler.GetSurveyStats)

			// Question management
			surveys.GET("/:id/questions", hm.questionHandler.ListQuestions)
			surveys.POST("/:id/questions", hm.questionHandler.AddQuestion)
			surveys.POST("/:id/questions/changes", hm.questionHandler.ApplyChanges)
			surveys.PUT("/:id/questions/reorder", hm.questionHandler.ReorderQuestions)
			surveys.PUT("/:id/questions/:question_id", hm.questionHandler.UpdateQuestion)
			surveys.DELETE("/:id/questions/:question_id", hm.questionHandler.DeactivateQuestion)
			surveys.POST("/:id/questions/:question_id/restore", hm.questionHandler.RestoreQuestion)

			// Responses and status
			surveys.GET("/:id/responses", hm.responseHandler.ListSurveyResponses)
			surveys.GET("/:id/status", hm.responseHandler.GetMyStatus)

			// Analytics and export
			surveys.GET("/:id/analytics", hm.analyticsHandler.GetSurveyAnalytics)
			surveys.GET("/:id/analytics/questions/:question_id", hm.analyticsHandler.GetQuestionAnalytics)
			surveys.GET("/:id/analytics/export", hm.analyticsHandler.ExportAnalytics)
			surveys.GET("/:id/export", hm.analyticsHandler.ExportResponses)
		}

		// Response routes
		responses := v1.Group("/responses")
		{
			responses.POST("", hm.responseHandler.SubmitResponse)
			responses.GET("/mine", hm.responseHandler.ListMyResponses)
			responses.GET("/:id", hm.responseHandler.GetResponse)
		}

		// Section routes
		sections := v1.Group("/sections")
		{
			sections.POST("", hm.sectionHandler.CreateSection)
			sections.GET("", hm.sectionHandler.ListSections)
			sections.GET("/:id", hm.sectionHandler.GetSection)
			sections.PUT("/:id", hm.sectionHandler.UpdateSection)
			sections.DELETE("/:id", hm.sectionHandler.DeactivateSection)
			sections.POST("/:id/restore", hm.sectionHandler.RestoreSection)
			sections.GET("/:id/students", hm.sectionHandler.GetRoster)
		}

		// Student administration
		v1.PUT("/students/:student_id/active", hm.sectionHandler.SetStudentActive)

		// Teacher dashboard
		v1.GET("/dashboard", hm.analyticsHandler.GetDashboard)
	}
}
