package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create persists the response and its answers in one transaction. The unique
// indexes on (survey_id, student_id, survey_version) and
// (response_id, question_id) make duplicates fail here rather than silently
// overwrite.
func (r *ResponsePostgreSQL) Create(ctx context.Context, response *models.SurveyResponse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		answers := response.Answers
		response.Answers = nil

		if err := tx.Create(response).Error; err != nil {
			return fmt.Errorf("failed to create response: %w", err)
		}

		for i := range answers {
			answers[i].ResponseID = response.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return fmt.Errorf("failed to create answers: %w", err)
			}
		}

		response.Answers = answers
		return nil
	})
}

// GetByID retrieves a response by ID
func (r *ResponsePostgreSQL) GetByID(ctx context.Context, id uint) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := r.db.WithContext(ctx).
		Preload("Student").
		First(&response, id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByIDWithAnswers retrieves a response with answers and their questions
func (r *ResponsePostgreSQL) GetByIDWithAnswers(ctx context.Context, id uint) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Answers").
		Preload("Answers.Question").
		First(&response, id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetBySurvey retrieves a survey's responses with filters and pagination
func (r *ResponsePostgreSQL) GetBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters) ([]*models.SurveyResponse, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_responses.survey_id = ?", surveyID)

	query = r.helpers.ApplyResponseFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, "submitted_at", "desc", filters.Limit, filters.Offset)

	var responses []*models.SurveyResponse
	err := query.
		Preload("Student").
		Preload("Student.Section").
		Preload("Answers").
		Find(&responses).Error
	if err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

// GetByStudent retrieves a student's submission history, newest first
func (r *ResponsePostgreSQL) GetByStudent(ctx context.Context, studentID string, limit, offset int) ([]*models.SurveyResponse, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("student_id = ?", studentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, "submitted_at", "desc", limit, offset)

	var responses []*models.SurveyResponse
	err := query.Preload("Survey").Find(&responses).Error
	if err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

// GetLatest retrieves the student's most recent response for a survey
func (r *ResponsePostgreSQL) GetLatest(ctx context.Context, surveyID uint, studentID string) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := r.db.WithContext(ctx).
		Where("survey_id = ? AND student_id = ?", surveyID, studentID).
		Order("survey_version DESC").
		First(&response).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Exists checks for a response at a specific version
func (r *ResponsePostgreSQL) Exists(ctx context.Context, surveyID uint, studentID string, version int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ? AND student_id = ? AND survey_version = ?", surveyID, studentID, version).
		Count(&count).Error

	return count > 0, err
}

// HasResponsesAtVersion checks whether anyone completed the given version
func (r *ResponsePostgreSQL) HasResponsesAtVersion(ctx context.Context, surveyID uint, version int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ? AND survey_version = ? AND is_complete = ?", surveyID, version, true).
		Count(&count).Error

	return count > 0, err
}

// HasResponses checks whether the survey has any responses at all
func (r *ResponsePostgreSQL) HasResponses(ctx context.Context, surveyID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error

	return count > 0, err
}

// CountBySurvey counts all responses for a survey
func (r *ResponsePostgreSQL) CountBySurvey(ctx context.Context, surveyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error

	return count, err
}

// CountByVersion groups response counts by survey version
func (r *ResponsePostgreSQL) CountByVersion(ctx context.Context, surveyID uint) ([]repositories.VersionResponseCount, error) {
	var counts []repositories.VersionResponseCount
	err := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Select("survey_version AS version, COUNT(*) AS count").
		Where("survey_id = ?", surveyID).
		Group("survey_version").
		Order("survey_version ASC").
		Scan(&counts).Error

	return counts, err
}

// CountBySection counts a section's responses for a survey, optionally at one version
func (r *ResponsePostgreSQL) CountBySection(ctx context.Context, surveyID, sectionID uint, version *int) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Joins("JOIN users st ON st.id = survey_responses.student_id").
		Where("survey_responses.survey_id = ? AND st.section_id = ?", surveyID, sectionID)

	if version != nil {
		query = query.Where("survey_responses.survey_version = ?", *version)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// Timeline returns daily response counts over a teacher's surveys since the
// given time
func (r *ResponsePostgreSQL) Timeline(ctx context.Context, creatorID string, since time.Time) ([]models.TimelinePoint, error) {
	var points []models.TimelinePoint
	err := r.db.WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Select("DATE(survey_responses.submitted_at) AS date, COUNT(*) AS count").
		Joins("JOIN surveys sv ON sv.id = survey_responses.survey_id").
		Where("sv.created_by = ? AND survey_responses.submitted_at >= ?", creatorID, since).
		Group("DATE(survey_responses.submitted_at)").
		Order("date ASC").
		Scan(&points).Error

	return points, err
}

// GetAnswersByQuestion retrieves all answers to a question over completed
// responses, with the response filters applied
func (r *ResponsePostgreSQL) GetAnswersByQuestion(ctx context.Context, questionID uint, filters repositories.ResponseFilters) ([]*models.Answer, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Answer{}).
		Joins("JOIN survey_responses ON survey_responses.id = answers.response_id").
		Where("answers.question_id = ? AND survey_responses.is_complete = ?", questionID, true)

	query = r.helpers.ApplyResponseFilters(query, filters)

	var answers []*models.Answer
	err := query.Find(&answers).Error
	return answers, err
}
