package repositories

import (
	"context"

	"github.com/gizmo-edu/survey-service/internal/models"
)

// SurveyRepository interface for survey-specific operations
type SurveyRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, survey *models.Survey) error
	GetByID(ctx context.Context, id uint) (*models.Survey, error)
	GetByIDWithQuestions(ctx context.Context, id uint, includeInactive bool) (*models.Survey, error)
	Update(ctx context.Context, survey *models.Survey) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Query operations
	List(ctx context.Context, filters SurveyFilters) ([]*models.Survey, int64, error)
	Search(ctx context.Context, query string, filters SurveyFilters) ([]*models.Survey, int64, error)
	GetByCreator(ctx context.Context, creatorID string, filters SurveyFilters) ([]*models.Survey, int64, error)
	GetBySection(ctx context.Context, sectionID uint, activeOnly bool) ([]*models.Survey, error)

	// Version control. GetForUpdate locks the survey row; BumpVersion is a
	// conditional single-statement increment and reports whether a row matched.
	GetForUpdate(ctx context.Context, id uint) (*models.Survey, error)
	BumpVersion(ctx context.Context, id uint, fromVersion int) (bool, error)

	// Status and assignment
	SetActive(ctx context.Context, id uint, active bool) error
	AssignSections(ctx context.Context, surveyID uint, sectionIDs []uint) error
	IsAssignedToSection(ctx context.Context, surveyID, sectionID uint) (bool, error)

	// Ownership
	IsOwner(ctx context.Context, surveyID uint, userID string) (bool, error)

	// Statistics
	GetStats(ctx context.Context, id uint) (*SurveyStats, error)
	GetCreatorStats(ctx context.Context, creatorID string) (*CreatorStats, error)

	// Validation helpers
	ExistsByTitle(ctx context.Context, title string, creatorID string, excludeID *uint) (bool, error)
}
