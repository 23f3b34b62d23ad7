package postgres

import (
	"context"
	"fmt"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

// Create creates a new question, appending it when no position is set
func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	if question.Position == 0 {
		max, err := q.MaxPosition(ctx, question.SurveyID)
		if err != nil {
			return fmt.Errorf("failed to resolve question position: %w", err)
		}
		question.Position = max + 1
	}
	return q.db.WithContext(ctx).Create(question).Error
}

// CreateBatch creates multiple questions in one statement
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).Create(questions).Error
}

// GetByID retrieves a question by ID
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := q.db.WithContext(ctx).First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetByIDs retrieves multiple questions by ID
func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&questions).Error
	return questions, err
}

// GetBySurvey retrieves a survey's questions in position order
func (q *QuestionPostgreSQL) GetBySurvey(ctx context.Context, surveyID uint, includeInactive bool) ([]*models.Question, error) {
	query := q.db.WithContext(ctx).Where("survey_id = ?", surveyID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var questions []*models.Question
	err := query.Order("position ASC").Find(&questions).Error
	return questions, err
}

// Update saves question content fields
func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).
		Model(question).
		Select("type", "text", "is_required", "options", "rating_min", "rating_max", "rating_labels").
		Updates(question).Error
}

// Deactivate hides a question from new submissions without deleting the row
func (q *QuestionPostgreSQL) Deactivate(ctx context.Context, id uint) error {
	return q.setActive(ctx, id, false)
}

// Restore brings a deactivated question back
func (q *QuestionPostgreSQL) Restore(ctx context.Context, id uint) error {
	return q.setActive(ctx, id, true)
}

func (q *QuestionPostgreSQL) setActive(ctx context.Context, id uint, active bool) error {
	result := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Update("is_active", active)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePositions rewrites positions for the given questions of one survey
func (q *QuestionPostgreSQL) UpdatePositions(ctx context.Context, surveyID uint, positions []repositories.QuestionPosition) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range positions {
			result := tx.Model(&models.Question{}).
				Where("id = ? AND survey_id = ?", p.QuestionID, surveyID).
				Update("position", p.Position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("question %d does not belong to survey %d: %w",
					p.QuestionID, surveyID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

// MaxPosition returns the highest position in the survey, 0 when empty
func (q *QuestionPostgreSQL) MaxPosition(ctx context.Context, surveyID uint) (int, error) {
	var max int
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("survey_id = ?", surveyID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error

	return max, err
}
