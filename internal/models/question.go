package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	RatingScale  QuestionType = "rating_scale"
	FreeText     QuestionType = "free_text"
)

type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	SurveyID uint         `json:"survey_id" gorm:"not null;index"`
	Type     QuestionType `json:"type" gorm:"not null;size:20" validate:"required,question_type"`
	Text     string       `json:"text" gorm:"not null;type:text" validate:"required,min=1,max=1000"`
	Position int          `json:"position" gorm:"not null;default:0;index"`

	IsRequired bool `json:"is_required" gorm:"default:true"`
	// Deactivated questions stay in place so old answers keep resolving
	IsActive bool `json:"is_active" gorm:"default:true;index"`

	// Type-specific content
	Options      datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"`       // []string, single_choice only
	RatingMin    *int           `json:"rating_min,omitempty"`                      // rating_scale only
	RatingMax    *int           `json:"rating_max,omitempty"`                      // rating_scale only
	RatingLabels datatypes.JSON `json:"rating_labels,omitempty" gorm:"type:jsonb"` // map[value]label

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the jsonb option column into a string slice.
func (q *Question) OptionList() ([]string, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// HasOption reports whether value is one of the question's configured options.
func (q *Question) HasOption(value string) bool {
	options, err := q.OptionList()
	if err != nil {
		return false
	}
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

// RatingBounds returns the inclusive rating range, defaulting to 1..5.
func (q *Question) RatingBounds() (min, max int) {
	min, max = 1, 5
	if q.RatingMin != nil {
		min = *q.RatingMin
	}
	if q.RatingMax != nil {
		max = *q.RatingMax
	}
	return min, max
}
