package repositories

import (
	"context"
	"time"

	"github.com/gizmo-edu/survey-service/internal/models"
)

// ResponseRepository interface for response and answer operations. Responses
// are write-once: Create persists a response together with its answers and
// there is no update path.
type ResponseRepository interface {
	// Create persists the response and all its answers atomically.
	Create(ctx context.Context, response *models.SurveyResponse) error
	GetByID(ctx context.Context, id uint) (*models.SurveyResponse, error)
	GetByIDWithAnswers(ctx context.Context, id uint) (*models.SurveyResponse, error)

	// Query operations
	GetBySurvey(ctx context.Context, surveyID uint, filters ResponseFilters) ([]*models.SurveyResponse, int64, error)
	GetByStudent(ctx context.Context, studentID string, limit, offset int) ([]*models.SurveyResponse, int64, error)
	GetLatest(ctx context.Context, surveyID uint, studentID string) (*models.SurveyResponse, error)

	// Existence checks backing the one-response-per-version rule
	Exists(ctx context.Context, surveyID uint, studentID string, version int) (bool, error)
	HasResponsesAtVersion(ctx context.Context, surveyID uint, version int) (bool, error)
	HasResponses(ctx context.Context, surveyID uint) (bool, error)

	// Aggregation
	CountBySurvey(ctx context.Context, surveyID uint) (int64, error)
	CountByVersion(ctx context.Context, surveyID uint) ([]VersionResponseCount, error)
	CountBySection(ctx context.Context, surveyID, sectionID uint, version *int) (int64, error)
	Timeline(ctx context.Context, creatorID string, since time.Time) ([]models.TimelinePoint, error)
	GetAnswersByQuestion(ctx context.Context, questionID uint, filters ResponseFilters) ([]*models.Answer, error)
}

type VersionResponseCount struct {
	Version int   `json:"version"`
	Count   int64 `json:"count"`
}
