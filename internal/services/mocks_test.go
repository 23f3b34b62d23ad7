package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
)

// MockSurveyRepository is a mock implementation of SurveyRepository
type MockSurveyRepository struct {
	mock.Mock
}

func (m *MockSurveyRepository) Create(ctx context.Context, survey *models.Survey) error {
	args := m.Called(ctx, survey)
	return args.Error(0)
}

func (m *MockSurveyRepository) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Survey), args.Error(1)
}

func (m *MockSurveyRepository) GetByIDWithQuestions(ctx context.Context, id uint, includeInactive bool) (*models.Survey, error) {
	args := m.Called(ctx, id, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Survey), args.Error(1)
}

func (m *MockSurveyRepository) Update(ctx context.Context, survey *models.Survey) error {
	args := m.Called(ctx, survey)
	return args.Error(0)
}

func (m *MockSurveyRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSurveyRepository) List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Survey), args.Get(1).(int64), args.Error(2)
}

func (m *MockSurveyRepository) Search(ctx context.Context, query string, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	args := m.Called(ctx, query, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Survey), args.Get(1).(int64), args.Error(2)
}

func (m *MockSurveyRepository) GetByCreator(ctx context.Context, creatorID string, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	args := m.Called(ctx, creatorID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Survey), args.Get(1).(int64), args.Error(2)
}

func (m *MockSurveyRepository) GetBySection(ctx context.Context, sectionID uint, activeOnly bool) ([]*models.Survey, error) {
	args := m.Called(ctx, sectionID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Survey), args.Error(1)
}

func (m *MockSurveyRepository) GetForUpdate(ctx context.Context, id uint) (*models.Survey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Survey), args.Error(1)
}

func (m *MockSurveyRepository) BumpVersion(ctx context.Context, id uint, fromVersion int) (bool, error) {
	args := m.Called(ctx, id, fromVersion)
	return args.Bool(0), args.Error(1)
}

func (m *MockSurveyRepository) SetActive(ctx context.Context, id uint, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockSurveyRepository) AssignSections(ctx context.Context, surveyID uint, sectionIDs []uint) error {
	args := m.Called(ctx, surveyID, sectionIDs)
	return args.Error(0)
}

func (m *MockSurveyRepository) IsAssignedToSection(ctx context.Context, surveyID, sectionID uint) (bool, error) {
	args := m.Called(ctx, surveyID, sectionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSurveyRepository) IsOwner(ctx context.Context, surveyID uint, userID string) (bool, error) {
	args := m.Called(ctx, surveyID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSurveyRepository) GetStats(ctx context.Context, id uint) (*repositories.SurveyStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.SurveyStats), args.Error(1)
}

func (m *MockSurveyRepository) GetCreatorStats(ctx context.Context, creatorID string) (*repositories.CreatorStats, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.CreatorStats), args.Error(1)
}

func (m *MockSurveyRepository) ExistsByTitle(ctx context.Context, title string, creatorID string, excludeID *uint) (bool, error) {
	args := m.Called(ctx, title, creatorID, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetBySurvey(ctx context.Context, surveyID uint, includeInactive bool) ([]*models.Question, error) {
	args := m.Called(ctx, surveyID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Deactivate(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) Restore(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) UpdatePositions(ctx context.Context, surveyID uint, positions []repositories.QuestionPosition) error {
	args := m.Called(ctx, surveyID, positions)
	return args.Error(0)
}

func (m *MockQuestionRepository) MaxPosition(ctx context.Context, surveyID uint) (int, error) {
	args := m.Called(ctx, surveyID)
	return args.Int(0), args.Error(1)
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, response *models.SurveyResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByID(ctx context.Context, id uint) (*models.SurveyResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SurveyResponse), args.Error(1)
}

func (m *MockResponseRepository) GetByIDWithAnswers(ctx context.Context, id uint) (*models.SurveyResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SurveyResponse), args.Error(1)
}

func (m *MockResponseRepository) GetBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters) ([]*models.SurveyResponse, int64, error) {
	args := m.Called(ctx, surveyID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.SurveyResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) GetByStudent(ctx context.Context, studentID string, limit, offset int) ([]*models.SurveyResponse, int64, error) {
	args := m.Called(ctx, studentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.SurveyResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) GetLatest(ctx context.Context, surveyID uint, studentID string) (*models.SurveyResponse, error) {
	args := m.Called(ctx, surveyID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SurveyResponse), args.Error(1)
}

func (m *MockResponseRepository) Exists(ctx context.Context, surveyID uint, studentID string, version int) (bool, error) {
	args := m.Called(ctx, surveyID, studentID, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockResponseRepository) HasResponsesAtVersion(ctx context.Context, surveyID uint, version int) (bool, error) {
	args := m.Called(ctx, surveyID, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockResponseRepository) HasResponses(ctx context.Context, surveyID uint) (bool, error) {
	args := m.Called(ctx, surveyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockResponseRepository) CountBySurvey(ctx context.Context, surveyID uint) (int64, error) {
	args := m.Called(ctx, surveyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseRepository) CountByVersion(ctx context.Context, surveyID uint) ([]repositories.VersionResponseCount, error) {
	args := m.Called(ctx, surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.VersionResponseCount), args.Error(1)
}

func (m *MockResponseRepository) CountBySection(ctx context.Context, surveyID, sectionID uint, version *int) (int64, error) {
	args := m.Called(ctx, surveyID, sectionID, version)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseRepository) Timeline(ctx context.Context, creatorID string, since time.Time) ([]models.TimelinePoint, error) {
	args := m.Called(ctx, creatorID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TimelinePoint), args.Error(1)
}

func (m *MockResponseRepository) GetAnswersByQuestion(ctx context.Context, questionID uint, filters repositories.ResponseFilters) ([]*models.Answer, error) {
	args := m.Called(ctx, questionID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Answer), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetStudentsBySection(ctx context.Context, sectionID uint, activeOnly bool) ([]*models.User, error) {
	args := m.Called(ctx, sectionID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) CountStudentsBySections(ctx context.Context, sectionIDs []uint, activeOnly bool) (int64, error) {
	args := m.Called(ctx, sectionIDs, activeOnly)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockUserRepository) SetActiveBySection(ctx context.Context, sectionID uint, active bool) error {
	args := m.Called(ctx, sectionID, active)
	return args.Error(0)
}

func (m *MockUserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	args := m.Called(ctx, id, role)
	return args.Bool(0), args.Error(1)
}

// MockSectionRepository is a mock implementation of SectionRepository
type MockSectionRepository struct {
	mock.Mock
}

func (m *MockSectionRepository) Create(ctx context.Context, section *models.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockSectionRepository) GetByID(ctx context.Context, id uint) (*models.Section, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Section), args.Error(1)
}

func (m *MockSectionRepository) GetByCode(ctx context.Context, code string) (*models.Section, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Section), args.Error(1)
}

func (m *MockSectionRepository) List(ctx context.Context, activeOnly bool) ([]*models.Section, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Section), args.Error(1)
}

func (m *MockSectionRepository) Update(ctx context.Context, section *models.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockSectionRepository) Deactivate(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSectionRepository) Restore(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSectionRepository) ExistsByCode(ctx context.Context, code string, excludeID *uint) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockRepository aggregates the per-entity mocks. WithTransaction hands the
// callback the same mock set, so expectations registered before the call
// cover the transactional path too.
type MockRepository struct {
	surveyRepo   *MockSurveyRepository
	questionRepo *MockQuestionRepository
	responseRepo *MockResponseRepository
	userRepo     *MockUserRepository
	sectionRepo  *MockSectionRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		surveyRepo:   &MockSurveyRepository{},
		questionRepo: &MockQuestionRepository{},
		responseRepo: &MockResponseRepository{},
		userRepo:     &MockUserRepository{},
		sectionRepo:  &MockSectionRepository{},
	}
}

func (m *MockRepository) Survey() repositories.SurveyRepository     { return m.surveyRepo }
func (m *MockRepository) Question() repositories.QuestionRepository { return m.questionRepo }
func (m *MockRepository) Response() repositories.ResponseRepository { return m.responseRepo }
func (m *MockRepository) User() repositories.UserRepository         { return m.userRepo }
func (m *MockRepository) Section() repositories.SectionRepository   { return m.sectionRepo }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }

func (m *MockRepository) assertExpectations(t mock.TestingT) {
	m.surveyRepo.AssertExpectations(t)
	m.questionRepo.AssertExpectations(t)
	m.responseRepo.AssertExpectations(t)
	m.userRepo.AssertExpectations(t)
	m.sectionRepo.AssertExpectations(t)
}

// stubAnalytics satisfies AnalyticsService for services that only need cache
// invalidation after a write.
type stubAnalytics struct {
	invalidated []uint
}

func (s *stubAnalytics) GetSurveyAnalytics(ctx context.Context, surveyID uint, filters repositories.ResponseFilters, userID string) (*models.SurveyAnalytics, error) {
	return nil, nil
}

func (s *stubAnalytics) GetQuestionAnalytics(ctx context.Context, surveyID, questionID uint, filters repositories.ResponseFilters, userID string) (*models.QuestionAnalytics, error) {
	return nil, nil
}

func (s *stubAnalytics) GetDashboard(ctx context.Context, teacherID string) (*models.DashboardSummary, error) {
	return nil, nil
}

func (s *stubAnalytics) Invalidate(ctx context.Context, surveyID uint) {
	s.invalidated = append(s.invalidated, surveyID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }
func uintPtr(u uint) *uint       { return &u }
