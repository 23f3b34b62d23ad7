package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gizmo-edu/survey-service/internal/events"
	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/validator"
)

type surveyService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	analytics AnalyticsService
}

func NewSurveyService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	analytics AnalyticsService,
) SurveyService {
	return &surveyService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		analytics: analytics,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *surveyService) Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*SurveyResponse, error) {
	s.logger.Info("Creating survey", "creator_id", creatorID, "title", req.Title)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.Translate(err)
	}

	if err := s.requireTeacher(ctx, creatorID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Survey().ExistsByTitle(ctx, req.Title, creatorID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if exists {
		return nil, ErrSurveyDuplicateTitle
	}

	survey := &models.Survey{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		IsActive:    true,
		CreatedBy:   creatorID,
		Version:     1,
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Survey().Create(ctx, survey); err != nil {
			return fmt.Errorf("failed to create survey: %w", err)
		}

		if len(req.SectionIDs) > 0 {
			if err := tx.Survey().AssignSections(ctx, survey.ID, req.SectionIDs); err != nil {
				return fmt.Errorf("failed to assign sections: %w", err)
			}
		}

		for i := range req.Questions {
			question, err := buildQuestionFromRequest(survey.ID, &req.Questions[i], s.validator)
			if err != nil {
				return err
			}
			question.Position = i + 1
			if err := tx.Question().Create(ctx, question); err != nil {
				return fmt.Errorf("failed to create question: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Survey created", "survey_id", survey.ID)
	s.publishPublished(ctx, survey, creatorID)

	return s.GetByIDWithQuestions(ctx, survey.ID, creatorID)
}

func (s *surveyService) GetByID(ctx context.Context, id uint, userID string) (*SurveyResponse, error) {
	survey, err := s.repo.Survey().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	if err := s.checkCanView(ctx, survey, userID); err != nil {
		return nil, err
	}

	return &SurveyResponse{Survey: survey}, nil
}

func (s *surveyService) GetByIDWithQuestions(ctx context.Context, id uint, userID string) (*SurveyResponse, error) {
	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, id, false)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey with questions: %w", err)
	}

	if err := s.checkCanView(ctx, survey, userID); err != nil {
		return nil, err
	}

	stats, err := s.repo.Survey().GetStats(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to load survey stats", "survey_id", id, "error", err)
	}

	return &SurveyResponse{Survey: survey, Stats: stats}, nil
}

// Update edits survey metadata. Title and description are survey content:
// when completed responses exist at the current version the edit advances the
// version, under the same row lock and conditional update the question path
// uses. Due date changes are administrative and never bump.
func (s *surveyService) Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string) (*SurveyResponse, error) {
	s.logger.Info("Updating survey", "survey_id", id, "user_id", userID)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.Translate(err)
	}

	if err := s.checkCanEdit(ctx, id, userID); err != nil {
		return nil, err
	}

	var bumped bool

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		survey, err := tx.Survey().GetForUpdate(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSurveyNotFound
			}
			return fmt.Errorf("failed to lock survey: %w", err)
		}

		contentChanged := false
		if req.Title != nil && *req.Title != survey.Title {
			exists, err := tx.Survey().ExistsByTitle(ctx, *req.Title, survey.CreatedBy, &id)
			if err != nil {
				return fmt.Errorf("failed to check title uniqueness: %w", err)
			}
			if exists {
				return ErrSurveyDuplicateTitle
			}
			survey.Title = *req.Title
			contentChanged = true
		}
		if req.Description != nil && !equalStringPtr(req.Description, survey.Description) {
			survey.Description = req.Description
			contentChanged = true
		}
		if req.DueDate != nil {
			survey.DueDate = req.DueDate
		}

		if err := tx.Survey().Update(ctx, survey); err != nil {
			return fmt.Errorf("failed to update survey: %w", err)
		}

		if contentChanged {
			hasResponses, err := tx.Response().HasResponsesAtVersion(ctx, id, survey.Version)
			if err != nil {
				return fmt.Errorf("failed to check responses: %w", err)
			}
			if hasResponses {
				ok, err := tx.Survey().BumpVersion(ctx, id, survey.Version)
				if err != nil {
					return fmt.Errorf("failed to bump version: %w", err)
				}
				if !ok {
					return ErrConcurrentEditConflict
				}
				bumped = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if bumped {
		s.logger.Info("Survey version advanced on metadata edit", "survey_id", id)
	}
	s.analytics.Invalidate(ctx, id)

	return s.GetByIDWithQuestions(ctx, id, userID)
}

// Delete soft deletes a survey. Refused once responses exist so history
// stays auditable; close the survey instead.
func (s *surveyService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting survey", "survey_id", id, "user_id", userID)

	if err := s.checkCanEdit(ctx, id, userID); err != nil {
		return err
	}

	hasResponses, err := s.repo.Response().HasResponses(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check responses: %w", err)
	}
	if hasResponses {
		return ErrSurveyNotDeletable
	}

	if err := s.repo.Survey().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	s.logger.Info("Survey deleted", "survey_id", id)
	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (s *surveyService) List(ctx context.Context, filters repositories.SurveyFilters, userID string) (*SurveyListResponse, error) {
	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin {
		filters.CreatedBy = &userID
	}

	surveys, total, err := s.repo.Survey().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}

	return buildSurveyList(surveys, total, filters), nil
}

func (s *surveyService) Search(ctx context.Context, query string, filters repositories.SurveyFilters, userID string) (*SurveyListResponse, error) {
	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin {
		filters.CreatedBy = &userID
	}

	surveys, total, err := s.repo.Survey().Search(ctx, query, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search surveys: %w", err)
	}

	return buildSurveyList(surveys, total, filters), nil
}

// ===== STATUS AND ASSIGNMENT =====

func (s *surveyService) SetActive(ctx context.Context, id uint, active bool, userID string) error {
	s.logger.Info("Setting survey active state", "survey_id", id, "active", active, "user_id", userID)

	if err := s.checkCanEdit(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Survey().SetActive(ctx, id, active); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to set survey state: %w", err)
	}
	return nil
}

func (s *surveyService) AssignSections(ctx context.Context, id uint, sectionIDs []uint, userID string) error {
	s.logger.Info("Assigning survey sections", "survey_id", id, "sections", len(sectionIDs), "user_id", userID)

	if err := s.checkCanEdit(ctx, id, userID); err != nil {
		return err
	}

	for _, sectionID := range sectionIDs {
		if _, err := s.repo.Section().GetByID(ctx, sectionID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSectionNotFound
			}
			return fmt.Errorf("failed to load section: %w", err)
		}
	}

	if err := s.repo.Survey().AssignSections(ctx, id, sectionIDs); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to assign sections: %w", err)
	}

	s.publishAssigned(ctx, id, sectionIDs, userID)
	return nil
}

// ===== STUDENT VIEW =====

// ListForStudent resolves the student dashboard: every open survey assigned
// to the student's section, with completed / retake / pending per survey.
func (s *surveyService) ListForStudent(ctx context.Context, studentID string) ([]*StudentSurveyView, error) {
	student, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student.SectionID == nil {
		return nil, ErrStudentNoSection
	}

	surveys, err := s.repo.Survey().GetBySection(ctx, *student.SectionID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list section surveys: %w", err)
	}

	now := time.Now()
	views := make([]*StudentSurveyView, 0, len(surveys))
	for _, survey := range surveys {
		if !survey.IsOpen(now) {
			continue
		}

		view := &StudentSurveyView{Survey: survey, Status: StudentSurveyPending}

		latest, err := s.repo.Response().GetLatest(ctx, survey.ID, studentID)
		if err != nil {
			if !repositories.IsNotFoundError(err) {
				return nil, fmt.Errorf("failed to load latest response: %w", err)
			}
		} else {
			view.Latest = latest
			if latest.SurveyVersion >= survey.Version {
				view.Status = StudentSurveyCompleted
			} else {
				view.Status = StudentSurveyRetake
			}
		}

		views = append(views, view)
	}

	return views, nil
}

// ===== STATISTICS =====

func (s *surveyService) GetStats(ctx context.Context, id uint, userID string) (*repositories.SurveyStats, error) {
	if err := s.checkCanEdit(ctx, id, userID); err != nil {
		return nil, err
	}

	stats, err := s.repo.Survey().GetStats(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey stats: %w", err)
	}
	return stats, nil
}

func (s *surveyService) GetCreatorStats(ctx context.Context, creatorID string) (*repositories.CreatorStats, error) {
	stats, err := s.repo.Survey().GetCreatorStats(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator stats: %w", err)
	}
	return stats, nil
}

// ===== PERMISSIONS =====

func (s *surveyService) getUserRole(ctx context.Context, userID string) (models.UserRole, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	return user.Role, nil
}

func (s *surveyService) requireTeacher(ctx context.Context, userID string) error {
	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return err
	}
	if role != models.RoleTeacher && role != models.RoleAdmin {
		return NewPermissionError(userID, 0, "survey", "create", "only teachers create surveys")
	}
	return nil
}

func (s *surveyService) checkCanView(ctx context.Context, survey *models.Survey, userID string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	switch user.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		if survey.CreatedBy == userID {
			return nil
		}
	case models.RoleStudent:
		if user.SectionID != nil {
			assigned, err := s.repo.Survey().IsAssignedToSection(ctx, survey.ID, *user.SectionID)
			if err != nil {
				return fmt.Errorf("failed to check assignment: %w", err)
			}
			if assigned && survey.IsActive {
				return nil
			}
		}
	}
	return NewPermissionError(userID, survey.ID, "survey", "read", "not owner or not assigned")
}

func (s *surveyService) checkCanEdit(ctx context.Context, surveyID uint, userID string) error {
	role, err := s.getUserRole(ctx, userID)
	if err != nil {
		return err
	}
	if role == models.RoleAdmin {
		return nil
	}
	if role != models.RoleTeacher {
		return NewPermissionError(userID, surveyID, "survey", "edit", "only teachers edit surveys")
	}

	isOwner, err := s.repo.Survey().IsOwner(ctx, surveyID, userID)
	if err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if !isOwner {
		return NewPermissionError(userID, surveyID, "survey", "edit", "not the survey owner")
	}
	return nil
}

// ===== EVENTS =====

func (s *surveyService) publishPublished(ctx context.Context, survey *models.Survey, creatorID string) {
	event := events.NewSurveyPublishedEvent(survey.ID, survey.Title, survey.DueDate, creatorID)
	if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish survey event", "survey_id", survey.ID, "error", err)
	}
}

func (s *surveyService) publishAssigned(ctx context.Context, surveyID uint, sectionIDs []uint, actorID string) {
	event := events.NewSurveyAssignedEvent(surveyID, sectionIDs, actorID)
	if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish assignment event", "survey_id", surveyID, "error", err)
	}
}

// ===== HELPERS =====

func buildSurveyList(surveys []*models.Survey, total int64, filters repositories.SurveyFilters) *SurveyListResponse {
	response := &SurveyListResponse{
		Surveys: make([]*SurveyResponse, len(surveys)),
		Total:   total,
		Page:    filters.Offset / max(filters.Limit, 1),
		Size:    filters.Limit,
	}
	for i, survey := range surveys {
		response.Surveys[i] = &SurveyResponse{Survey: survey}
	}
	return response
}

func buildQuestionFromRequest(surveyID uint, req *AddQuestionRequest, v *validator.Validator) (*models.Question, error) {
	question := &models.Question{
		SurveyID:   surveyID,
		Type:       req.Type,
		Text:       req.Text,
		IsRequired: true,
		IsActive:   true,
		RatingMin:  req.RatingMin,
		RatingMax:  req.RatingMax,
	}
	if req.IsRequired != nil {
		question.IsRequired = *req.IsRequired
	}
	if req.Position != nil {
		question.Position = *req.Position
	}
	if len(req.Options) > 0 {
		encoded, err := validator.EncodeOptions(req.Options)
		if err != nil {
			return nil, NewValidationError("options", "could not encode options", req.Options)
		}
		question.Options = encoded
	}
	if len(req.RatingLabels) > 0 {
		question.RatingLabels = req.RatingLabels
	}

	if errs := v.Question().ValidateContent(question); len(errs) > 0 {
		return nil, errs
	}
	return question, nil
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
