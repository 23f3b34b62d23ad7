package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Repository is the aggregate root the services depend on. WithTransaction
// hands the callback a Repository bound to the same transaction so a whole
// unit of work commits or rolls back together.
type Repository interface {
	Survey() SurveyRepository
	Question() QuestionRepository
	Response() ResponseRepository
	User() UserRepository
	Section() SectionRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
}

// ===== SHARED FILTER STRUCTS =====

type SurveyFilters struct {
	IsActive  *bool      `json:"is_active"`
	CreatedBy *string    `json:"created_by"`
	SectionID *uint      `json:"section_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "title", "due_date"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	SurveyVersion *int       `json:"survey_version"`
	SectionID     *uint      `json:"section_id"`
	DateFrom      *time.Time `json:"date_from"`
	DateTo        *time.Time `json:"date_to"`
	Limit         int        `json:"limit"`
	Offset        int        `json:"offset"`
}

// ===== SHARED HELPER STRUCTS =====

type QuestionPosition struct {
	QuestionID uint `json:"question_id" validate:"required"`
	Position   int  `json:"position" validate:"min=0"`
}

// ===== SHARED STATISTICS STRUCTS =====

type SurveyStats struct {
	TotalResponses   int64   `json:"total_responses"`
	CurrentResponses int64   `json:"current_responses"`
	OutdatedCount    int64   `json:"outdated_count"`
	AssignedStudents int64   `json:"assigned_students"`
	CompletionRate   float64 `json:"completion_rate"`
	QuestionCount    int64   `json:"question_count"`
}

type CreatorStats struct {
	TotalSurveys   int64 `json:"total_surveys"`
	ActiveSurveys  int64 `json:"active_surveys"`
	TotalQuestions int64 `json:"total_questions"`
	TotalResponses int64 `json:"total_responses"`
}

// ===== ERROR CLASSIFICATION =====

// IsNotFoundError reports whether err is the store's missing-row error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
