package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/gizmo-edu/survey-service/internal/errors"
	"github.com/gizmo-edu/survey-service/internal/events"
	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/validator"
)

type responseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
	publisher events.EventPublisher
	analytics AnalyticsService
	now       func() time.Time
}

func NewResponseService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	analytics AnalyticsService,
) ResponseService {
	return &responseService{
		repo:      repo,
		logger:    logger,
		ops:       NewServiceLogger(logger, "response"),
		validator: v,
		publisher: publisher,
		analytics: analytics,
		now:       time.Now,
	}
}

// Submit records one complete response for the survey's current version.
//
// The whole submission is one transaction: the duplicate check, the answer
// validation against the active question set, and the insert of the response
// row with all answer rows. A validation failure persists nothing. The unique
// index on (survey_id, student_id, survey_version) catches the race where two
// identical submissions slip past the application check; both outcomes
// surface as ErrAlreadySubmitted.
func (s *responseService) Submit(ctx context.Context, req *SubmitResponseRequest, studentID string) (result *SubmitResult, err error) {
	done := s.ops.TimedOperation(ctx, "submit_response", studentID, req.SurveyID, "response")
	defer func() { done(err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.Translate(err)
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submitting response",
		"survey_id", req.SurveyID,
		"student_id", studentID,
		"answer_count", len(req.Answers))

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		survey, err := tx.Survey().GetByIDWithQuestions(ctx, req.SurveyID, false)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSurveyNotFound
			}
			return fmt.Errorf("failed to load survey: %w", err)
		}

		if !survey.IsOpen(s.now()) {
			return ErrSurveyClosed
		}

		assigned, err := tx.Survey().IsAssignedToSection(ctx, survey.ID, *student.SectionID)
		if err != nil {
			return fmt.Errorf("failed to check assignment: %w", err)
		}
		if !assigned {
			return ErrSurveyNotAssigned
		}

		exists, err := tx.Response().Exists(ctx, survey.ID, studentID, survey.Version)
		if err != nil {
			return fmt.Errorf("failed to check existing response: %w", err)
		}
		if exists {
			return ErrAlreadySubmitted
		}

		answers, verrs := s.buildAnswers(survey.Questions, req.Answers)
		if len(verrs) > 0 {
			return verrs
		}

		response := &models.SurveyResponse{
			SurveyID:      survey.ID,
			StudentID:     studentID,
			SurveyVersion: survey.Version,
			IsComplete:    true,
			SubmittedAt:   s.now(),
			Answers:       answers,
		}

		if err := tx.Response().Create(ctx, response); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrAlreadySubmitted
			}
			return fmt.Errorf("failed to record response: %w", err)
		}

		result = &SubmitResult{
			ResponseID:    response.ID,
			SurveyID:      survey.ID,
			SurveyVersion: survey.Version,
			AnswerCount:   len(answers),
			SubmittedAt:   response.SubmittedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Response recorded",
		"response_id", result.ResponseID,
		"survey_id", result.SurveyID,
		"survey_version", result.SurveyVersion)

	s.publishSubmitted(ctx, result, studentID)
	s.analytics.Invalidate(ctx, result.SurveyID)

	return result, nil
}

// buildAnswers validates the submitted answers against the survey's active
// questions and returns the rows to insert. All problems are collected so the
// student sees every issue at once.
func (s *responseService) buildAnswers(questions []models.Question, inputs []AnswerInput) ([]models.Answer, ValidationErrors) {
	var errs ValidationErrors

	byQuestion := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byQuestion[questions[i].ID] = &questions[i]
	}

	seen := make(map[uint]bool, len(inputs))
	answers := make([]models.Answer, 0, len(inputs))

	for i := range inputs {
		input := &inputs[i]
		field := fmt.Sprintf("answers[%d]", i)

		question, ok := byQuestion[input.QuestionID]
		if !ok {
			errs = append(errs, *apperrors.NewValidationError(field,
				"refers to an unknown or inactive question", input.QuestionID))
			continue
		}
		if seen[input.QuestionID] {
			errs = append(errs, *apperrors.NewValidationError(field,
				"duplicates an earlier answer for the same question", input.QuestionID))
			continue
		}
		seen[input.QuestionID] = true

		answer, verr := s.buildAnswer(question, input)
		if verr != nil {
			errs = append(errs, *verr)
			continue
		}
		if answer != nil {
			answers = append(answers, *answer)
		}
	}

	for i := range questions {
		q := &questions[i]
		if q.IsRequired && !seen[q.ID] {
			errs = append(errs, *apperrors.NewValidationError(
				fmt.Sprintf("question_%d", q.ID), "is required", nil))
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return answers, nil
}

// buildAnswer converts one input into an answer row, or nil when an optional
// question was deliberately left blank.
func (s *responseService) buildAnswer(question *models.Question, input *AnswerInput) (*models.Answer, *ValidationError) {
	field := fmt.Sprintf("question_%d", question.ID)

	switch question.Type {
	case models.SingleChoice:
		if input.Choice == nil || *input.Choice == "" {
			if question.IsRequired {
				return nil, apperrors.NewValidationError(field, "requires a choice", nil)
			}
			return nil, nil
		}
		if !question.HasOption(*input.Choice) {
			return nil, apperrors.NewValidationError(field, "choice is not one of the configured options", *input.Choice)
		}
		return &models.Answer{QuestionID: question.ID, Choice: input.Choice}, nil

	case models.RatingScale:
		if input.Rating == nil {
			if question.IsRequired {
				return nil, apperrors.NewValidationError(field, "requires a rating", nil)
			}
			return nil, nil
		}
		min, max := question.RatingBounds()
		if *input.Rating < min || *input.Rating > max {
			return nil, apperrors.NewValidationError(field,
				fmt.Sprintf("rating must be between %d and %d", min, max), *input.Rating)
		}
		return &models.Answer{QuestionID: question.ID, Rating: input.Rating}, nil

	case models.FreeText:
		if input.Text == nil || *input.Text == "" {
			if question.IsRequired {
				return nil, apperrors.NewValidationError(field, "requires an answer", nil)
			}
			return nil, nil
		}
		return &models.Answer{QuestionID: question.ID, Text: input.Text}, nil
	}

	return nil, apperrors.NewValidationError(field, "has an unsupported question type", question.Type)
}

// ===== READ OPERATIONS =====

func (s *responseService) GetByID(ctx context.Context, id uint, userID string) (*models.SurveyResponse, error) {
	response, err := s.repo.Response().GetByIDWithAnswers(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to load response: %w", err)
	}

	if response.StudentID != userID {
		if err := s.checkCanView(ctx, response.SurveyID, userID); err != nil {
			return nil, err
		}
	}

	return response, nil
}

func (s *responseService) GetBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters, userID string) (*ResponseListResult, error) {
	if err := s.checkCanView(ctx, surveyID, userID); err != nil {
		return nil, err
	}

	responses, total, err := s.repo.Response().GetBySurvey(ctx, surveyID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	return &ResponseListResult{
		Responses: responses,
		Total:     total,
		Page:      filters.Offset / max(filters.Limit, 1),
		Size:      filters.Limit,
	}, nil
}

func (s *responseService) GetByStudent(ctx context.Context, studentID string, limit, offset int) (*ResponseListResult, error) {
	responses, total, err := s.repo.Response().GetByStudent(ctx, studentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list student responses: %w", err)
	}

	return &ResponseListResult{
		Responses: responses,
		Total:     total,
		Page:      offset / max(limit, 1),
		Size:      limit,
	}, nil
}

// GetStudentStatus reports where one student stands against the survey's
// current version.
func (s *responseService) GetStudentStatus(ctx context.Context, surveyID uint, studentID string) (*StudentSurveyStatus, error) {
	survey, err := s.repo.Survey().GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}

	status := &StudentSurveyStatus{
		SurveyID:      surveyID,
		SurveyVersion: survey.Version,
		Status:        StudentSurveyPending,
	}

	latest, err := s.repo.Response().GetLatest(ctx, surveyID, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return status, nil
		}
		return nil, fmt.Errorf("failed to load latest response: %w", err)
	}

	status.RespondedAt = &latest.SubmittedAt
	status.RespondedVersion = &latest.SurveyVersion
	if latest.SurveyVersion >= survey.Version {
		status.Status = StudentSurveyCompleted
	} else {
		status.Status = StudentSurveyRetake
	}
	return status, nil
}

// ===== HELPERS =====

func (s *responseService) loadStudent(ctx context.Context, studentID string) (*models.User, error) {
	student, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return nil, NewPermissionError(studentID, 0, "response", "submit", "only students submit responses")
	}
	if !student.IsActive {
		return nil, ErrUserInactive
	}
	if student.SectionID == nil {
		return nil, ErrStudentNoSection
	}
	return student, nil
}

func (s *responseService) checkCanView(ctx context.Context, surveyID uint, userID string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.Role == models.RoleAdmin {
		return nil
	}

	isOwner, err := s.repo.Survey().IsOwner(ctx, surveyID, userID)
	if err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if !isOwner {
		return NewPermissionError(userID, surveyID, "response", "view", "not the survey owner")
	}
	return nil
}

func (s *responseService) publishSubmitted(ctx context.Context, result *SubmitResult, studentID string) {
	event := events.NewResponseSubmittedEvent(
		result.ResponseID, result.SurveyID, result.SurveyVersion, studentID, result.SubmittedAt)
	if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish submission event",
			"response_id", result.ResponseID,
			"error", err)
	}
}
