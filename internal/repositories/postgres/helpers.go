package postgres

import (
	"fmt"

	"github.com/gizmo-edu/survey-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers holds query-building helpers used by several repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplySurveyFilters applies common survey filters to a query.
func (h *SharedHelpers) ApplySurveyFilters(query *gorm.DB, filters repositories.SurveyFilters) *gorm.DB {
	if filters.IsActive != nil {
		query = query.Where("surveys.is_active = ?", *filters.IsActive)
	}
	if filters.CreatedBy != nil {
		query = query.Where("surveys.created_by = ?", *filters.CreatedBy)
	}
	if filters.SectionID != nil {
		query = query.
			Joins("JOIN survey_sections ss ON ss.survey_id = surveys.id").
			Where("ss.section_id = ?", *filters.SectionID)
	}
	if filters.DateFrom != nil {
		query = query.Where("surveys.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("surveys.created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyResponseFilters applies common response filters to a query.
func (h *SharedHelpers) ApplyResponseFilters(query *gorm.DB, filters repositories.ResponseFilters) *gorm.DB {
	if filters.SurveyVersion != nil {
		query = query.Where("survey_responses.survey_version = ?", *filters.SurveyVersion)
	}
	if filters.SectionID != nil {
		query = query.
			Joins("JOIN users st ON st.id = survey_responses.student_id").
			Where("st.section_id = ?", *filters.SectionID)
	}
	if filters.DateFrom != nil {
		query = query.Where("survey_responses.submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("survey_responses.submitted_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting to a query.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	switch sortBy {
	case "title", "due_date", "created_at", "submitted_at":
	default:
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if offset < 0 {
		offset = 0
	}
	// A negative limit disables pagination, used by exports.
	if limit < 0 {
		return query.Offset(offset)
	}
	if limit == 0 || limit > 100 {
		limit = 20
	}
	return query.Limit(limit).Offset(offset)
}
