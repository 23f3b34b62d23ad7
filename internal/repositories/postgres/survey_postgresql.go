package postgres

import (
	"context"
	"fmt"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SurveyPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSurveyPostgreSQL(db *gorm.DB) repositories.SurveyRepository {
	return &SurveyPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create creates a new survey at version 1
func (s *SurveyPostgreSQL) Create(ctx context.Context, survey *models.Survey) error {
	survey.Version = 1
	if err := s.db.WithContext(ctx).Create(survey).Error; err != nil {
		return fmt.Errorf("failed to create survey: %w", err)
	}
	return nil
}

// GetByID retrieves a survey by ID
func (s *SurveyPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Sections").
		First(&survey, id).Error

	if err != nil {
		return nil, err
	}

	return &survey, nil
}

// GetByIDWithQuestions retrieves a survey with its questions in position order
func (s *SurveyPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint, includeInactive bool) (*models.Survey, error) {
	var survey models.Survey
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Sections").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			if !includeInactive {
				db = db.Where("is_active = ?", true)
			}
			return db.Order("position ASC")
		}).
		First(&survey, id).Error

	if err != nil {
		return nil, err
	}

	survey.QuestionCount = len(survey.Questions)
	return &survey, nil
}

// Update saves survey fields. The version column is managed exclusively by
// BumpVersion and is excluded here so a stale in-memory value never wins.
func (s *SurveyPostgreSQL) Update(ctx context.Context, survey *models.Survey) error {
	return s.db.WithContext(ctx).
		Model(survey).
		Omit("version", "created_by", "created_at").
		Updates(map[string]interface{}{
			"title":       survey.Title,
			"description": survey.Description,
			"is_active":   survey.IsActive,
			"due_date":    survey.DueDate,
		}).Error
}

// Delete soft deletes a survey
func (s *SurveyPostgreSQL) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Survey{}, id).Error
}

// List retrieves surveys with filters and pagination
func (s *SurveyPostgreSQL) List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Survey{})
	query = s.helpers.ApplySurveyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var surveys []*models.Survey
	err := query.Preload("Creator").Preload("Sections").Find(&surveys).Error
	if err != nil {
		return nil, 0, err
	}

	return surveys, total, nil
}

// Search performs a title/description search with the regular filters
func (s *SurveyPostgreSQL) Search(ctx context.Context, query string, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Survey{})

	if query != "" {
		pattern := fmt.Sprintf("%%%s%%", query)
		db = db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	db = s.helpers.ApplySurveyFilters(db, filters)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = s.helpers.ApplyPaginationAndSort(db, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var surveys []*models.Survey
	err := db.Preload("Creator").Find(&surveys).Error
	if err != nil {
		return nil, 0, err
	}

	return surveys, total, nil
}

// GetByCreator retrieves surveys created by a specific teacher
func (s *SurveyPostgreSQL) GetByCreator(ctx context.Context, creatorID string, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	filters.CreatedBy = &creatorID
	return s.List(ctx, filters)
}

// GetBySection retrieves surveys assigned to a section
func (s *SurveyPostgreSQL) GetBySection(ctx context.Context, sectionID uint, activeOnly bool) ([]*models.Survey, error) {
	query := s.db.WithContext(ctx).
		Joins("JOIN survey_sections ss ON ss.survey_id = surveys.id").
		Where("ss.section_id = ?", sectionID)

	if activeOnly {
		query = query.Where("surveys.is_active = ?", true)
	}

	var surveys []*models.Survey
	err := query.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("position ASC")
		}).
		Order("surveys.created_at DESC").
		Find(&surveys).Error

	return surveys, err
}

// GetForUpdate loads the survey row under a FOR UPDATE lock. Callers must be
// inside a transaction; the lock holds until that transaction ends.
func (s *SurveyPostgreSQL) GetForUpdate(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&survey, id).Error

	if err != nil {
		return nil, err
	}

	return &survey, nil
}

// BumpVersion advances the version by exactly one, conditional on the caller's
// observed value. Zero rows affected means another writer got there first.
func (s *SurveyPostgreSQL) BumpVersion(ctx context.Context, id uint, fromVersion int) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("id = ? AND version = ?", id, fromVersion).
		UpdateColumn("version", gorm.Expr("version + 1"))

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// SetActive opens or closes a survey without touching its version
func (s *SurveyPostgreSQL) SetActive(ctx context.Context, id uint, active bool) error {
	result := s.db.WithContext(ctx).
		Model(&models.Survey{}).
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

// AssignSections replaces the survey's section assignment
func (s *SurveyPostgreSQL) AssignSections(ctx context.Context, surveyID uint, sectionIDs []uint) error {
	var survey models.Survey
	if err := s.db.WithContext(ctx).First(&survey, surveyID).Error; err != nil {
		return err
	}

	sections := make([]models.Section, len(sectionIDs))
	for i, id := range sectionIDs {
		sections[i] = models.Section{ID: id}
	}

	return s.db.WithContext(ctx).Model(&survey).Association("Sections").Replace(sections)
}

// IsAssignedToSection checks the survey/section link
func (s *SurveyPostgreSQL) IsAssignedToSection(ctx context.Context, surveyID, sectionID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("survey_sections").
		Where("survey_id = ? AND section_id = ?", surveyID, sectionID).
		Count(&count).Error

	return count > 0, err
}

// IsOwner checks if a user created the survey
func (s *SurveyPostgreSQL) IsOwner(ctx context.Context, surveyID uint, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("id = ? AND created_by = ?", surveyID, userID).
		Count(&count).Error

	return count > 0, err
}

// GetStats retrieves response statistics for a survey
func (s *SurveyPostgreSQL) GetStats(ctx context.Context, id uint) (*repositories.SurveyStats, error) {
	var survey models.Survey
	if err := s.db.WithContext(ctx).Select("id", "version").First(&survey, id).Error; err != nil {
		return nil, err
	}

	stats := &repositories.SurveyStats{}

	if err := s.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ?", id).
		Count(&stats.TotalResponses).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ? AND survey_version = ?", id, survey.Version).
		Count(&stats.CurrentResponses).Error; err != nil {
		return nil, err
	}
	stats.OutdatedCount = stats.TotalResponses - stats.CurrentResponses

	if err := s.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("survey_id = ? AND is_active = ?", id, true).
		Count(&stats.QuestionCount).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Table("users u").
		Joins("JOIN survey_sections ss ON ss.section_id = u.section_id").
		Where("ss.survey_id = ? AND u.role = ? AND u.is_active = ?", id, models.RoleStudent, true).
		Count(&stats.AssignedStudents).Error; err != nil {
		return nil, err
	}

	if stats.AssignedStudents > 0 {
		stats.CompletionRate = float64(stats.CurrentResponses) / float64(stats.AssignedStudents) * 100
	}

	return stats, nil
}

// GetCreatorStats retrieves statistics for a teacher
func (s *SurveyPostgreSQL) GetCreatorStats(ctx context.Context, creatorID string) (*repositories.CreatorStats, error) {
	stats := &repositories.CreatorStats{}

	s.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("created_by = ?", creatorID).
		Count(&stats.TotalSurveys)

	s.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("created_by = ? AND is_active = ?", creatorID, true).
		Count(&stats.ActiveSurveys)

	s.db.WithContext(ctx).
		Table("questions q").
		Joins("JOIN surveys sv ON q.survey_id = sv.id").
		Where("sv.created_by = ? AND sv.deleted_at IS NULL", creatorID).
		Count(&stats.TotalQuestions)

	s.db.WithContext(ctx).
		Table("survey_responses sr").
		Joins("JOIN surveys sv ON sr.survey_id = sv.id").
		Where("sv.created_by = ? AND sv.deleted_at IS NULL", creatorID).
		Count(&stats.TotalResponses)

	return stats, nil
}

// ExistsByTitle checks if a survey with the same title exists for a creator
func (s *SurveyPostgreSQL) ExistsByTitle(ctx context.Context, title string, creatorID string, excludeID *uint) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("title = ? AND created_by = ?", title, creatorID)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}
