package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gizmo-edu/survey-service/internal/events"
	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/validator"
)

func newTestQuestionService(repo *MockRepository) (QuestionService, *stubAnalytics, *events.MockEventPublisher) {
	logger := testLogger()
	analytics := &stubAnalytics{}
	publisher := events.NewMockEventPublisher(logger)
	svc := NewQuestionService(repo, logger, validator.New(), publisher, analytics)
	return svc, analytics, publisher
}

func expectTeacherOwner(repo *MockRepository, userID string, surveyID uint) {
	repo.userRepo.On("GetByID", mock.Anything, userID).Return(
		&models.User{ID: userID, Role: models.RoleTeacher, IsActive: true}, nil)
	repo.surveyRepo.On("IsOwner", mock.Anything, surveyID, userID).Return(true, nil)
}

func TestQuestionService_ApplyQuestionChange_NoResponsesKeepsVersion(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestQuestionService(repo)

	expectTeacherOwner(repo, "teacher-1", 10)
	repo.surveyRepo.On("GetForUpdate", mock.Anything, uint(10)).Return(
		&models.Survey{ID: 10, Version: 1, CreatedBy: "teacher-1"}, nil)
	repo.questionRepo.On("GetByID", mock.Anything, uint(5)).Return(
		&models.Question{ID: 5, SurveyID: 10, Type: models.FreeText, Text: "Old"}, nil)
	repo.questionRepo.On("Deactivate", mock.Anything, uint(5)).Return(nil)
	repo.responseRepo.On("HasResponsesAtVersion", mock.Anything, uint(10), 1).Return(false, nil)

	result, err := svc.DeactivateQuestion(context.Background(), 10, 5, "teacher-1")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Version)
	assert.False(t, result.VersionBumped)
	repo.surveyRepo.AssertNotCalled(t, "BumpVersion", mock.Anything, mock.Anything, mock.Anything)
	repo.assertExpectations(t)
}

func TestQuestionService_ApplyQuestionChange_ContentChangeWithResponsesBumps(t *testing.T) {
	repo := newMockRepository()
	svc, analytics, publisher := newTestQuestionService(repo)

	expectTeacherOwner(repo, "teacher-1", 10)
	repo.surveyRepo.On("GetForUpdate", mock.Anything, uint(10)).Return(
		&models.Survey{ID: 10, Version: 3, CreatedBy: "teacher-1"}, nil)
	repo.questionRepo.On("Create", mock.Anything, mock.MatchedBy(func(q *models.Question) bool {
		return q.SurveyID == 10 && q.Type == models.FreeText && q.Text == "Anything to add?"
	})).Return(nil)
	repo.responseRepo.On("HasResponsesAtVersion", mock.Anything, uint(10), 3).Return(true, nil)
	repo.surveyRepo.On("BumpVersion", mock.Anything, uint(10), 3).Return(true, nil)

	result, err := svc.AddQuestion(context.Background(), 10, &AddQuestionRequest{
		Type: models.FreeText,
		Text: "Anything to add?",
	}, "teacher-1")

	require.NoError(t, err)
	assert.Equal(t, 4, result.Version)
	assert.True(t, result.VersionBumped)
	assert.Equal(t, []uint{10}, analytics.invalidated)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSurveyVersionBumped, published[0].Type)
	repo.assertExpectations(t)
}

func TestQuestionService_ApplyQuestionChange_ReorderNeverBumps(t *testing.T) {
	positions := []repositories.QuestionPosition{
		{QuestionID: 5, Position: 1},
		{QuestionID: 6, Position: 0},
	}

	for _, hasResponses := range []bool{false, true} {
		repo := newMockRepository()
		svc, _, publisher := newTestQuestionService(repo)

		expectTeacherOwner(repo, "teacher-1", 10)
		repo.surveyRepo.On("GetForUpdate", mock.Anything, uint(10)).Return(
			&models.Survey{ID: 10, Version: 2, CreatedBy: "teacher-1"}, nil)
		repo.questionRepo.On("UpdatePositions", mock.Anything, uint(10), positions).Return(nil)
		_ = hasResponses // a pure reorder never consults the response store

		result, err := svc.ReorderQuestions(context.Background(), 10, positions, "teacher-1")

		require.NoError(t, err)
		assert.Equal(t, 2, result.Version)
		assert.False(t, result.VersionBumped)
		assert.Empty(t, publisher.GetPublishedEvents())
		repo.responseRepo.AssertNotCalled(t, "HasResponsesAtVersion", mock.Anything, mock.Anything, mock.Anything)
		repo.surveyRepo.AssertNotCalled(t, "BumpVersion", mock.Anything, mock.Anything, mock.Anything)
		repo.assertExpectations(t)
	}
}

func TestQuestionService_ApplyQuestionChange_StaleExpectedVersion(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestQuestionService(repo)

	expectTeacherOwner(repo, "teacher-1", 10)
	repo.surveyRepo.On("GetForUpdate", mock.Anything, uint(10)).Return(
		&models.Survey{ID: 10, Version: 4, CreatedBy: "teacher-1"}, nil)

	_, err := svc.ApplyQuestionChange(context.Background(), 10, &QuestionChange{
		ExpectedVersion: intPtr(3),
		Deactivate:      []uint{5},
	}, "teacher-1")

	assert.ErrorIs(t, err, ErrConcurrentEditConflict)
	repo.questionRepo.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestQuestionService_ApplyQuestionChange_BumpRaceRollsBack(t *testing.T) {
	repo := newMockRepository()
	svc, _, publisher := newTestQuestionService(repo)

	expectTeacherOwner(repo, "teacher-1", 10)
	repo.surveyRepo.On("GetForUpdate", mock.Anything, uint(10)).Return(
		&models.Survey{ID: 10, Version: 2, CreatedBy: "teacher-1"}, nil)
	repo.questionRepo.On("GetByID", mock.Anything, uint(5)).Return(
		&models.Question{ID: 5, SurveyID: 10, Type: models.FreeText, Text: "Old"}, nil)
	repo.questionRepo.On("Deactivate", mock.Anything, uint(5)).Return(nil)
	repo.responseRepo.On("HasResponsesAtVersion", mock.Anything, uint(10), 2).Return(true, nil)
	repo.surveyRepo.On("BumpVersion", mock.Anything, uint(10), 2).Return(false, nil)

	_, err := svc.DeactivateQuestion(context.Background(), 10, 5, "teacher-1")

	assert.ErrorIs(t, err, ErrConcurrentEditConflict)
	assert.Empty(t, publisher.GetPublishedEvents())
	repo.assertExpectations(t)
}

func TestQuestionService_ApplyQuestionChange_EmptyChange(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestQuestionService(repo)

	_, err := svc.ApplyQuestionChange(context.Background(), 10, &QuestionChange{}, "teacher-1")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestQuestionService_ApplyQuestionChange_QuestionFromAnotherSurvey(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestQuestionService(repo)

	expectTeacherOwner(repo, "teacher-1", 10)
	repo.surveyRepo.On("GetForUpdate", mock.Anything, uint(10)).Return(
		&models.Survey{ID: 10, Version: 1, CreatedBy: "teacher-1"}, nil)
	repo.questionRepo.On("GetByID", mock.Anything, uint(77)).Return(
		&models.Question{ID: 77, SurveyID: 99, Type: models.FreeText, Text: "Elsewhere"}, nil)

	_, err := svc.DeactivateQuestion(context.Background(), 10, 77, "teacher-1")

	assert.ErrorIs(t, err, ErrQuestionNotInSurvey)
}

func TestQuestionService_ApplyQuestionChange_NotOwner(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestQuestionService(repo)

	repo.userRepo.On("GetByID", mock.Anything, "teacher-2").Return(
		&models.User{ID: "teacher-2", Role: models.RoleTeacher, IsActive: true}, nil)
	repo.surveyRepo.On("IsOwner", mock.Anything, uint(10), "teacher-2").Return(false, nil)

	_, err := svc.DeactivateQuestion(context.Background(), 10, 5, "teacher-2")

	var perr *PermissionError
	assert.ErrorAs(t, err, &perr)
	repo.surveyRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestQuestionService_ApplyQuestionChange_SurveyNotFound(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestQuestionService(repo)

	expectTeacherOwner(repo, "teacher-1", 10)
	repo.surveyRepo.On("GetForUpdate", mock.Anything, uint(10)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.DeactivateQuestion(context.Background(), 10, 5, "teacher-1")

	assert.ErrorIs(t, err, ErrSurveyNotFound)
}

func TestQuestionService_UpdateQuestion_InvalidContentRejected(t *testing.T) {
	repo := newMockRepository()
	svc, _, _ := newTestQuestionService(repo)

	expectTeacherOwner(repo, "teacher-1", 10)
	repo.surveyRepo.On("GetForUpdate", mock.Anything, uint(10)).Return(
		&models.Survey{ID: 10, Version: 1, CreatedBy: "teacher-1"}, nil)
	options, err := validator.EncodeOptions([]string{"Yes", "No"})
	require.NoError(t, err)
	repo.questionRepo.On("GetByID", mock.Anything, uint(5)).Return(
		&models.Question{ID: 5, SurveyID: 10, Type: models.SingleChoice, Text: "Pick one", Options: options}, nil)

	// Switching to a rating scale while options remain configured is invalid.
	ratingType := models.RatingScale
	_, err = svc.UpdateQuestion(context.Background(), 10, 5, &UpdateQuestionRequest{
		Type: &ratingType,
	}, "teacher-1")

	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	repo.questionRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
