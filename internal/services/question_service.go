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

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
	publisher events.EventPublisher
	analytics AnalyticsService
}

func NewQuestionService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	analytics AnalyticsService,
) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		ops:       NewServiceLogger(logger, "question"),
		validator: v,
		publisher: publisher,
		analytics: analytics,
	}
}

// ApplyQuestionChange applies one atomic unit of question edits.
//
// The decision whether the survey version advances is made here and nowhere
// else: the survey row is locked for the duration of the transaction, the
// edits are applied, and only when the change alters content AND at least one
// completed response exists at the current version does the version move,
// by exactly one, through a conditional update. A failed conditional update
// means a concurrent writer won and the whole unit rolls back.
func (s *questionService) ApplyQuestionChange(ctx context.Context, surveyID uint, change *QuestionChange, actorID string) (res *QuestionChangeResult, err error) {
	done := s.ops.TimedOperation(ctx, "apply_question_change", actorID, surveyID, "survey")
	defer func() { done(err) }()

	if change == nil || change.IsEmpty() {
		return nil, NewValidationError("change", "must contain at least one edit", nil)
	}
	if err := s.validator.ValidateStruct(change); err != nil {
		return nil, validator.Translate(err)
	}

	if err := s.checkCanEdit(ctx, surveyID, actorID); err != nil {
		return nil, err
	}

	s.logger.Info("Applying question change",
		"survey_id", surveyID,
		"actor_id", actorID,
		"add", len(change.Add),
		"update", len(change.Update),
		"deactivate", len(change.Deactivate),
		"restore", len(change.Restore),
		"reorder", len(change.Reorder))

	result := &QuestionChangeResult{SurveyID: surveyID}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		survey, err := tx.Survey().GetForUpdate(ctx, surveyID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSurveyNotFound
			}
			return fmt.Errorf("failed to lock survey: %w", err)
		}

		if change.ExpectedVersion != nil && *change.ExpectedVersion != survey.Version {
			return ErrConcurrentEditConflict
		}

		if err := s.applyEdits(ctx, tx, survey, change); err != nil {
			return err
		}

		result.Version = survey.Version

		if change.HasContentChange() {
			hasResponses, err := tx.Response().HasResponsesAtVersion(ctx, surveyID, survey.Version)
			if err != nil {
				return fmt.Errorf("failed to check responses: %w", err)
			}

			if hasResponses {
				bumped, err := tx.Survey().BumpVersion(ctx, surveyID, survey.Version)
				if err != nil {
					return fmt.Errorf("failed to bump version: %w", err)
				}
				if !bumped {
					return ErrConcurrentEditConflict
				}
				result.Version = survey.Version + 1
				result.VersionBumped = true
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.VersionBumped {
		s.logger.Info("Survey version advanced",
			"survey_id", surveyID,
			"version", result.Version)
		s.publishVersionBumped(ctx, surveyID, result.Version, actorID)
	}
	s.analytics.Invalidate(ctx, surveyID)

	return result, nil
}

// applyEdits runs the individual question writes inside the caller's
// transaction. Existing answer rows are never touched.
func (s *questionService) applyEdits(ctx context.Context, tx repositories.Repository, survey *models.Survey, change *QuestionChange) error {
	for i := range change.Add {
		question, err := buildQuestionFromRequest(survey.ID, &change.Add[i], s.validator)
		if err != nil {
			return err
		}
		if err := tx.Question().Create(ctx, question); err != nil {
			return fmt.Errorf("failed to add question: %w", err)
		}
	}

	for i := range change.Update {
		req := &change.Update[i]
		question, err := tx.Question().GetByID(ctx, req.QuestionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to load question: %w", err)
		}
		if question.SurveyID != survey.ID {
			return ErrQuestionNotInSurvey
		}

		s.applyQuestionUpdate(question, req)
		if errs := s.validator.Question().ValidateContent(question); len(errs) > 0 {
			return errs
		}
		if err := tx.Question().Update(ctx, question); err != nil {
			return fmt.Errorf("failed to update question: %w", err)
		}
	}

	for _, id := range change.Deactivate {
		if err := s.requireInSurvey(ctx, tx, survey.ID, id); err != nil {
			return err
		}
		if err := tx.Question().Deactivate(ctx, id); err != nil {
			return fmt.Errorf("failed to deactivate question: %w", err)
		}
	}

	for _, id := range change.Restore {
		if err := s.requireInSurvey(ctx, tx, survey.ID, id); err != nil {
			return err
		}
		if err := tx.Question().Restore(ctx, id); err != nil {
			return fmt.Errorf("failed to restore question: %w", err)
		}
	}

	if len(change.Reorder) > 0 {
		if err := tx.Question().UpdatePositions(ctx, survey.ID, change.Reorder); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotInSurvey
			}
			return fmt.Errorf("failed to reorder questions: %w", err)
		}
	}

	return nil
}

func (s *questionService) applyQuestionUpdate(question *models.Question, req *UpdateQuestionRequest) {
	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.IsRequired != nil {
		question.IsRequired = *req.IsRequired
	}
	if req.Options != nil {
		if encoded, err := validator.EncodeOptions(req.Options); err == nil {
			question.Options = encoded
		}
	}
	if req.RatingMin != nil {
		question.RatingMin = req.RatingMin
	}
	if req.RatingMax != nil {
		question.RatingMax = req.RatingMax
	}
	if len(req.RatingLabels) > 0 {
		question.RatingLabels = req.RatingLabels
	}
}

func (s *questionService) requireInSurvey(ctx context.Context, tx repositories.Repository, surveyID, questionID uint) error {
	question, err := tx.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to load question: %w", err)
	}
	if question.SurveyID != surveyID {
		return ErrQuestionNotInSurvey
	}
	return nil
}

// ===== CONVENIENCE WRAPPERS =====

func (s *questionService) AddQuestion(ctx context.Context, surveyID uint, req *AddQuestionRequest, actorID string) (*QuestionChangeResult, error) {
	return s.ApplyQuestionChange(ctx, surveyID, &QuestionChange{Add: []AddQuestionRequest{*req}}, actorID)
}

func (s *questionService) UpdateQuestion(ctx context.Context, surveyID, questionID uint, req *UpdateQuestionRequest, actorID string) (*QuestionChangeResult, error) {
	req.QuestionID = questionID
	return s.ApplyQuestionChange(ctx, surveyID, &QuestionChange{Update: []UpdateQuestionRequest{*req}}, actorID)
}

func (s *questionService) DeactivateQuestion(ctx context.Context, surveyID, questionID uint, actorID string) (*QuestionChangeResult, error) {
	return s.ApplyQuestionChange(ctx, surveyID, &QuestionChange{Deactivate: []uint{questionID}}, actorID)
}

func (s *questionService) RestoreQuestion(ctx context.Context, surveyID, questionID uint, actorID string) (*QuestionChangeResult, error) {
	return s.ApplyQuestionChange(ctx, surveyID, &QuestionChange{Restore: []uint{questionID}}, actorID)
}

func (s *questionService) ReorderQuestions(ctx context.Context, surveyID uint, positions []repositories.QuestionPosition, actorID string) (*QuestionChangeResult, error) {
	return s.ApplyQuestionChange(ctx, surveyID, &QuestionChange{Reorder: positions}, actorID)
}

// GetBySurvey lists a survey's questions. Teachers see inactive questions on
// request; students never do.
func (s *questionService) GetBySurvey(ctx context.Context, surveyID uint, includeInactive bool, userID string) ([]*models.Question, error) {
	if includeInactive {
		if err := s.checkCanEdit(ctx, surveyID, userID); err != nil {
			return nil, err
		}
	}
	questions, err := s.repo.Question().GetBySurvey(ctx, surveyID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// ===== PERMISSIONS AND EVENTS =====

func (s *questionService) checkCanEdit(ctx context.Context, surveyID uint, userID string) error {
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
	if user.Role != models.RoleTeacher {
		return NewPermissionError(userID, surveyID, "survey", "edit_questions", "only teachers edit surveys")
	}

	isOwner, err := s.repo.Survey().IsOwner(ctx, surveyID, userID)
	if err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if !isOwner {
		return NewPermissionError(userID, surveyID, "survey", "edit_questions", "not the survey owner")
	}
	return nil
}

func (s *questionService) publishVersionBumped(ctx context.Context, surveyID uint, version int, actorID string) {
	event := events.NewSurveyVersionBumpedEvent(surveyID, version, actorID, time.Now())
	if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish version bump event",
			"survey_id", surveyID,
			"error", err)
	}
}
