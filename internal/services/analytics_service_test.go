package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gizmo-edu/survey-service/internal/cache"
	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/validator"
)

func TestBuildWordCloud(t *testing.T) {
	answers := []*models.Answer{
		{Text: stringPtr("The food is great, really great food!")},
		{Text: stringPtr("Food was cold. More options would be great.")},
		{Text: stringPtr("ok")},
		{Rating: intPtr(4)},
		{Text: nil},
	}

	words := BuildWordCloud(answers, 50)

	require.NotEmpty(t, words)
	assert.Equal(t, models.WordWeight{Text: "great", Weight: 3}, words[0])
	assert.Equal(t, models.WordWeight{Text: "food", Weight: 3}, words[1])

	for _, w := range words {
		assert.NotEqual(t, "the", w.Text)
		assert.NotEqual(t, "was", w.Text)
		assert.GreaterOrEqual(t, len(w.Text), 3)
	}
}

func TestBuildWordCloud_TiesBreakAlphabetically(t *testing.T) {
	answers := []*models.Answer{
		{Text: stringPtr("zebra apple")},
	}

	words := BuildWordCloud(answers, 50)

	require.Len(t, words, 2)
	assert.Equal(t, "apple", words[0].Text)
	assert.Equal(t, "zebra", words[1].Text)
}

func TestBuildWordCloud_Limit(t *testing.T) {
	answers := []*models.Answer{
		{Text: stringPtr("apple banana cherry durian elderberry fig")},
	}

	words := BuildWordCloud(answers, 3)

	assert.Len(t, words, 3)
}

func TestAggregateChoices(t *testing.T) {
	options, err := validator.EncodeOptions([]string{"Yes", "No", "Sometimes"})
	require.NoError(t, err)
	question := &models.Question{ID: 1, Type: models.SingleChoice, Options: options}

	answers := []*models.Answer{
		{Choice: stringPtr("Yes")},
		{Choice: stringPtr("Yes")},
		{Choice: stringPtr("No")},
		{Choice: stringPtr("Yes")},
	}

	counts := aggregateChoices(question, answers)

	require.Len(t, counts, 3)
	assert.Equal(t, models.ChoiceCount{Option: "Yes", Count: 3, Percentage: 75}, counts[0])
	assert.Equal(t, models.ChoiceCount{Option: "No", Count: 1, Percentage: 25}, counts[1])
	assert.Equal(t, models.ChoiceCount{Option: "Sometimes", Count: 0, Percentage: 0}, counts[2])
}

func TestAggregateChoices_NoAnswers(t *testing.T) {
	options, err := validator.EncodeOptions([]string{"Yes", "No"})
	require.NoError(t, err)
	question := &models.Question{ID: 1, Type: models.SingleChoice, Options: options}

	counts := aggregateChoices(question, nil)

	require.Len(t, counts, 2)
	for _, cc := range counts {
		assert.Zero(t, cc.Count)
		assert.Zero(t, cc.Percentage)
	}
}

func TestAggregateRatings_FullScaleIncluded(t *testing.T) {
	question := &models.Question{ID: 2, Type: models.RatingScale, RatingMin: intPtr(1), RatingMax: intPtr(5)}

	answers := []*models.Answer{
		{Rating: intPtr(5)},
		{Rating: intPtr(5)},
		{Rating: intPtr(3)},
	}

	counts := aggregateRatings(question, answers)

	require.Len(t, counts, 5)
	assert.Equal(t, models.RatingCount{Value: 1, Count: 0}, counts[0])
	assert.Equal(t, models.RatingCount{Value: 3, Count: 1}, counts[2])
	assert.Equal(t, models.RatingCount{Value: 5, Count: 2}, counts[4])
}

func TestAnalyticsService_GetQuestionAnalytics_WrongSurvey(t *testing.T) {
	repo := newMockRepository()
	svc := NewAnalyticsService(repo, testLogger(), cache.NewMemoryCache())

	repo.userRepo.On("GetByID", mock.Anything, "teacher-1").Return(
		&models.User{ID: "teacher-1", Role: models.RoleTeacher, IsActive: true}, nil)
	repo.surveyRepo.On("IsOwner", mock.Anything, uint(10), "teacher-1").Return(true, nil)
	repo.questionRepo.On("GetByID", mock.Anything, uint(5)).Return(
		&models.Question{ID: 5, SurveyID: 99, Type: models.FreeText, Text: "Elsewhere"}, nil)

	_, err := svc.GetQuestionAnalytics(context.Background(), 10, 5, repositories.ResponseFilters{}, "teacher-1")

	assert.ErrorIs(t, err, ErrQuestionNotInSurvey)
}

func TestAnalyticsService_GetQuestionAnalytics_ChartKinds(t *testing.T) {
	options, err := validator.EncodeOptions([]string{"Yes", "No"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		question *models.Question
		answers  []*models.Answer
		want     models.ChartKind
	}{
		{
			name:     "single choice maps to pie",
			question: &models.Question{ID: 5, SurveyID: 10, Type: models.SingleChoice, Text: "Pick", Options: options},
			answers:  []*models.Answer{{Choice: stringPtr("Yes")}},
			want:     models.ChartPie,
		},
		{
			name:     "rating scale maps to bar",
			question: &models.Question{ID: 5, SurveyID: 10, Type: models.RatingScale, Text: "Rate"},
			answers:  []*models.Answer{{Rating: intPtr(3)}},
			want:     models.ChartBar,
		},
		{
			name:     "free text maps to word cloud",
			question: &models.Question{ID: 5, SurveyID: 10, Type: models.FreeText, Text: "Say"},
			answers:  []*models.Answer{{Text: stringPtr("wonderful lunch")}},
			want:     models.ChartWordCloud,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			svc := NewAnalyticsService(repo, testLogger(), cache.NewMemoryCache())

			repo.userRepo.On("GetByID", mock.Anything, "teacher-1").Return(
				&models.User{ID: "teacher-1", Role: models.RoleTeacher, IsActive: true}, nil)
			repo.surveyRepo.On("IsOwner", mock.Anything, uint(10), "teacher-1").Return(true, nil)
			repo.questionRepo.On("GetByID", mock.Anything, uint(5)).Return(tt.question, nil)
			repo.responseRepo.On("GetAnswersByQuestion", mock.Anything, uint(5), mock.Anything).Return(tt.answers, nil)

			qa, err := svc.GetQuestionAnalytics(context.Background(), 10, 5, repositories.ResponseFilters{}, "teacher-1")

			require.NoError(t, err)
			assert.Equal(t, tt.want, qa.ChartKind)
		})
	}
}
