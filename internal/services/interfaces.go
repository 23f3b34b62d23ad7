package services

import (
	"context"
	"time"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"gorm.io/datatypes"
)

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Survey() SurveyService
	Question() QuestionService
	Response() ResponseService
	Analytics() AnalyticsService
	Export() ExportService
	Section() SectionService
}

// ===== SERVICE INTERFACES =====

type SurveyService interface {
	Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*SurveyResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*SurveyResponse, error)
	GetByIDWithQuestions(ctx context.Context, id uint, userID string) (*SurveyResponse, error)
	Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string) (*SurveyResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	List(ctx context.Context, filters repositories.SurveyFilters, userID string) (*SurveyListResponse, error)
	Search(ctx context.Context, query string, filters repositories.SurveyFilters, userID string) (*SurveyListResponse, error)

	SetActive(ctx context.Context, id uint, active bool, userID string) error
	AssignSections(ctx context.Context, id uint, sectionIDs []uint, userID string) error

	ListForStudent(ctx context.Context, studentID string) ([]*StudentSurveyView, error)

	GetStats(ctx context.Context, id uint, userID string) (*repositories.SurveyStats, error)
	GetCreatorStats(ctx context.Context, creatorID string) (*repositories.CreatorStats, error)
}

// QuestionService owns all question mutation. Every mutation funnels through
// ApplyQuestionChange so the version decision happens exactly once per unit
// of work.
type QuestionService interface {
	ApplyQuestionChange(ctx context.Context, surveyID uint, change *QuestionChange, actorID string) (*QuestionChangeResult, error)

	AddQuestion(ctx context.Context, surveyID uint, req *AddQuestionRequest, actorID string) (*QuestionChangeResult, error)
	UpdateQuestion(ctx context.Context, surveyID, questionID uint, req *UpdateQuestionRequest, actorID string) (*QuestionChangeResult, error)
	DeactivateQuestion(ctx context.Context, surveyID, questionID uint, actorID string) (*QuestionChangeResult, error)
	RestoreQuestion(ctx context.Context, surveyID, questionID uint, actorID string) (*QuestionChangeResult, error)
	ReorderQuestions(ctx context.Context, surveyID uint, positions []repositories.QuestionPosition, actorID string) (*QuestionChangeResult, error)

	GetBySurvey(ctx context.Context, surveyID uint, includeInactive bool, userID string) ([]*models.Question, error)
}

type ResponseService interface {
	Submit(ctx context.Context, req *SubmitResponseRequest, studentID string) (*SubmitResult, error)

	GetByID(ctx context.Context, id uint, userID string) (*models.SurveyResponse, error)
	GetBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters, userID string) (*ResponseListResult, error)
	GetByStudent(ctx context.Context, studentID string, limit, offset int) (*ResponseListResult, error)
	GetStudentStatus(ctx context.Context, surveyID uint, studentID string) (*StudentSurveyStatus, error)
}

type AnalyticsService interface {
	GetSurveyAnalytics(ctx context.Context, surveyID uint, filters repositories.ResponseFilters, userID string) (*models.SurveyAnalytics, error)
	GetQuestionAnalytics(ctx context.Context, surveyID, questionID uint, filters repositories.ResponseFilters, userID string) (*models.QuestionAnalytics, error)
	GetDashboard(ctx context.Context, teacherID string) (*models.DashboardSummary, error)
	Invalidate(ctx context.Context, surveyID uint)
}

type ExportService interface {
	ExportResponses(ctx context.Context, req *models.ExportRequest, userID string) (*models.ExportResult, error)
	ExportAnalytics(ctx context.Context, surveyID uint, userID string) (*models.ExportResult, error)
}

type SectionService interface {
	Create(ctx context.Context, req *CreateSectionRequest, actorID string) (*models.Section, error)
	GetByID(ctx context.Context, id uint) (*models.Section, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Section, error)
	Update(ctx context.Context, id uint, req *UpdateSectionRequest, actorID string) (*models.Section, error)
	Deactivate(ctx context.Context, id uint, actorID string) error
	Restore(ctx context.Context, id uint, actorID string) error
	GetRoster(ctx context.Context, id uint, activeOnly bool) ([]*models.User, error)
	SetStudentActive(ctx context.Context, studentID string, active bool, actorID string) error
}

// ===== SURVEY DTOS =====

type CreateSurveyRequest struct {
	Title       string               `json:"title" validate:"required,min=1,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=2000"`
	DueDate     *time.Time           `json:"due_date"`
	SectionIDs  []uint               `json:"section_ids"`
	Questions   []AddQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type UpdateSurveyRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	DueDate     *time.Time `json:"due_date"`
}

type SurveyResponse struct {
	*models.Survey
	Stats *repositories.SurveyStats `json:"stats,omitempty"`
}

type SurveyListResponse struct {
	Surveys []*SurveyResponse `json:"surveys"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

// StudentSurveyView is one row on the student dashboard.
type StudentSurveyView struct {
	Survey *models.Survey         `json:"survey"`
	Status StudentSurveyState     `json:"status"`
	Latest *models.SurveyResponse `json:"latest_response,omitempty"`
}

type StudentSurveyState string

const (
	// Completed: latest response is at the current version
	StudentSurveyCompleted StudentSurveyState = "completed"
	// Retake: responded before, but the survey has moved on
	StudentSurveyRetake StudentSurveyState = "retake"
	// Pending: never responded
	StudentSurveyPending StudentSurveyState = "pending"
)

type StudentSurveyStatus struct {
	SurveyID         uint               `json:"survey_id"`
	SurveyVersion    int                `json:"survey_version"`
	Status           StudentSurveyState `json:"status"`
	RespondedAt      *time.Time         `json:"responded_at,omitempty"`
	RespondedVersion *int               `json:"responded_version,omitempty"`
}

// ===== QUESTION DTOS =====

type AddQuestionRequest struct {
	Type       models.QuestionType `json:"type" validate:"required,question_type"`
	Text       string              `json:"text" validate:"required,min=1,max=1000"`
	IsRequired *bool               `json:"is_required"`
	Position   *int                `json:"position" validate:"omitempty,min=0"`

	Options      []string       `json:"options" validate:"omitempty,max=20,dive,min=1,max=500"`
	RatingMin    *int           `json:"rating_min"`
	RatingMax    *int           `json:"rating_max"`
	RatingLabels datatypes.JSON `json:"rating_labels"`
}

type UpdateQuestionRequest struct {
	QuestionID uint `json:"question_id" validate:"required"`

	Type       *models.QuestionType `json:"type" validate:"omitempty,question_type"`
	Text       *string              `json:"text" validate:"omitempty,min=1,max=1000"`
	IsRequired *bool                `json:"is_required"`

	Options      []string       `json:"options" validate:"omitempty,max=20,dive,min=1,max=500"`
	RatingMin    *int           `json:"rating_min"`
	RatingMax    *int           `json:"rating_max"`
	RatingLabels datatypes.JSON `json:"rating_labels"`
}

// QuestionChange is one atomic unit of question edits against a survey.
// ExpectedVersion, when set, must match the stored version or the change is
// rejected with ErrConcurrentEditConflict.
type QuestionChange struct {
	ExpectedVersion *int `json:"expected_version"`

	Add        []AddQuestionRequest            `json:"add" validate:"omitempty,dive"`
	Update     []UpdateQuestionRequest         `json:"update" validate:"omitempty,dive"`
	Deactivate []uint                          `json:"deactivate"`
	Restore    []uint                          `json:"restore"`
	Reorder    []repositories.QuestionPosition `json:"reorder" validate:"omitempty,dive"`
}

// IsEmpty reports whether the change carries no edits at all.
func (c *QuestionChange) IsEmpty() bool {
	return len(c.Add) == 0 && len(c.Update) == 0 &&
		len(c.Deactivate) == 0 && len(c.Restore) == 0 && len(c.Reorder) == 0
}

// HasContentChange reports whether the change alters what students see or
// answer. Reordering alone is presentational and does not count.
func (c *QuestionChange) HasContentChange() bool {
	return len(c.Add) > 0 || len(c.Update) > 0 ||
		len(c.Deactivate) > 0 || len(c.Restore) > 0
}

type QuestionChangeResult struct {
	SurveyID      uint `json:"survey_id"`
	Version       int  `json:"version"`
	VersionBumped bool `json:"version_bumped"`
}

// ===== RESPONSE DTOS =====

type SubmitResponseRequest struct {
	SurveyID uint          `json:"survey_id" validate:"required"`
	Answers  []AnswerInput `json:"answers" validate:"required,dive"`
}

// AnswerInput carries exactly one value, matching the question type.
type AnswerInput struct {
	QuestionID uint    `json:"question_id" validate:"required"`
	Choice     *string `json:"choice"`
	Rating     *int    `json:"rating"`
	Text       *string `json:"text"`
}

type SubmitResult struct {
	ResponseID    uint      `json:"response_id"`
	SurveyID      uint      `json:"survey_id"`
	SurveyVersion int       `json:"survey_version"`
	AnswerCount   int       `json:"answer_count"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type ResponseListResult struct {
	Responses []*models.SurveyResponse `json:"responses"`
	Total     int64                    `json:"total"`
	Page      int                      `json:"page"`
	Size      int                      `json:"size"`
}

// ===== SECTION DTOS =====

type CreateSectionRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Code string `json:"code" validate:"required,min=1,max=20"`
}

type UpdateSectionRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	Code *string `json:"code" validate:"omitempty,min=1,max=20"`
}
