package repositories

import (
	"context"

	"github.com/gizmo-edu/survey-service/internal/models"
)

// QuestionRepository interface for question operations. Questions are never
// hard-deleted; Deactivate/Restore toggle is_active so answers recorded
// against old versions keep resolving.
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	GetBySurvey(ctx context.Context, surveyID uint, includeInactive bool) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error

	// Soft lifecycle
	Deactivate(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error

	// Ordering
	UpdatePositions(ctx context.Context, surveyID uint, positions []QuestionPosition) error
	MaxPosition(ctx context.Context, surveyID uint) (int, error)
}
