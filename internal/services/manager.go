package services

import (
	"log/slog"

	"github.com/gizmo-edu/survey-service/internal/cache"
	"github.com/gizmo-edu/survey-service/internal/events"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/validator"
)

type serviceManager struct {
	survey    SurveyService
	question  QuestionService
	response  ResponseService
	analytics AnalyticsService
	export    ExportService
	section   SectionService
}

// NewServiceManager wires every service against the shared repository,
// validator, publisher, and cache.
func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
) ServiceManager {
	analytics := NewAnalyticsService(repo, logger, cacheService)

	return &serviceManager{
		survey:    NewSurveyService(repo, logger, v, publisher, analytics),
		question:  NewQuestionService(repo, logger, v, publisher, analytics),
		response:  NewResponseService(repo, logger, v, publisher, analytics),
		analytics: analytics,
		export:    NewExportService(repo, logger, v, analytics),
		section:   NewSectionService(repo, logger, v),
	}
}

func (m *serviceManager) Survey() SurveyService       { return m.survey }
func (m *serviceManager) Question() QuestionService   { return m.question }
func (m *serviceManager) Response() ResponseService   { return m.response }
func (m *serviceManager) Analytics() AnalyticsService { return m.analytics }
func (m *serviceManager) Export() ExportService       { return m.export }
func (m *serviceManager) Section() SectionService     { return m.section }
