package services

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/validator"
)

func TestExportService_ExportResponses_CSV(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, testLogger(), validator.New(), &stubAnalytics{})

	submitted := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	section := &models.Section{ID: 7, Name: "5A", Code: "5A"}

	repo.userRepo.On("GetByID", mock.Anything, "teacher-1").Return(
		&models.User{ID: "teacher-1", Role: models.RoleTeacher, IsActive: true}, nil)
	repo.surveyRepo.On("IsOwner", mock.Anything, uint(10), "teacher-1").Return(true, nil)
	repo.surveyRepo.On("GetByIDWithQuestions", mock.Anything, uint(10), true).Return(&models.Survey{
		ID:      10,
		Title:   "Cafeteria feedback",
		Version: 2,
		Questions: []models.Question{
			{ID: 1, SurveyID: 10, Type: models.SingleChoice, Text: "Do you eat here?"},
			{ID: 2, SurveyID: 10, Type: models.RatingScale, Text: "Rate the food"},
		},
	}, nil)
	repo.responseRepo.On("GetBySurvey", mock.Anything, uint(10), mock.MatchedBy(func(f repositories.ResponseFilters) bool {
		return f.Limit == -1
	})).Return([]*models.SurveyResponse{
		{
			SurveyID:      10,
			StudentID:     "student-1",
			SurveyVersion: 2,
			SubmittedAt:   submitted,
			Student:       models.User{ID: "student-1", Username: "jdoe", FullName: "Jordan Doe", Section: section},
			Answers: []models.Answer{
				{QuestionID: 1, Choice: stringPtr("Yes")},
				{QuestionID: 2, Rating: intPtr(4)},
			},
		},
	}, int64(1), nil)

	result, err := svc.ExportResponses(context.Background(), &models.ExportRequest{
		SurveyID: 10,
		Format:   "csv",
	}, "teacher-1")

	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, result.FileName, "survey_10_responses_")
	assert.True(t, strings.HasSuffix(result.FileName, ".csv"))

	records, err := csv.NewReader(strings.NewReader(string(result.Data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{
		"Student Name", "Username", "Section", "Submitted At", "Survey Version",
		"Do you eat here?", "Rate the food",
	}, records[0])
	assert.Equal(t, []string{
		"Jordan Doe", "jdoe", "5A", "2026-03-10 09:30:00", "2", "Yes", "4",
	}, records[1])
	repo.assertExpectations(t)
}

func TestExportService_ExportResponses_StudentRejected(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, testLogger(), validator.New(), &stubAnalytics{})

	repo.userRepo.On("GetByID", mock.Anything, "student-1").Return(testStudent("student-1", 7), nil)
	repo.surveyRepo.On("IsOwner", mock.Anything, uint(10), "student-1").Return(false, nil)

	_, err := svc.ExportResponses(context.Background(), &models.ExportRequest{
		SurveyID: 10,
		Format:   "csv",
	}, "student-1")

	var perr *PermissionError
	assert.ErrorAs(t, err, &perr)
	repo.surveyRepo.AssertNotCalled(t, "GetByIDWithQuestions", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportService_ExportResponses_XLSX(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, testLogger(), validator.New(), &stubAnalytics{})

	repo.userRepo.On("GetByID", mock.Anything, "teacher-1").Return(
		&models.User{ID: "teacher-1", Role: models.RoleTeacher, IsActive: true}, nil)
	repo.surveyRepo.On("IsOwner", mock.Anything, uint(10), "teacher-1").Return(true, nil)
	repo.surveyRepo.On("GetByIDWithQuestions", mock.Anything, uint(10), true).Return(&models.Survey{
		ID: 10, Title: "Cafeteria feedback", Version: 1,
	}, nil)
	repo.responseRepo.On("GetBySurvey", mock.Anything, uint(10), mock.Anything).Return(
		[]*models.SurveyResponse{}, int64(0), nil)

	result, err := svc.ExportResponses(context.Background(), &models.ExportRequest{
		SurveyID: 10,
		Format:   "xlsx",
	}, "teacher-1")

	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.ContentType)
	assert.True(t, strings.HasSuffix(result.FileName, ".xlsx"))
	assert.NotEmpty(t, result.Data)
}
