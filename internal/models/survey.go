package models

import (
	"time"

	"gorm.io/gorm"
)

type Survey struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	IsActive    bool       `json:"is_active" gorm:"default:true;index"`
	DueDate     *time.Time `json:"due_date"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Version control: bumped when content changes after responses exist
	Version int `json:"version" gorm:"not null;default:1"`

	// Relations
	Sections  []Section        `json:"sections,omitempty" gorm:"many2many:survey_sections"`
	Questions []Question       `json:"questions,omitempty" gorm:"foreignKey:SurveyID"`
	Responses []SurveyResponse `json:"-" gorm:"foreignKey:SurveyID"`
	Creator   User             `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	// Computed fields (not stored)
	QuestionCount        int `json:"question_count" gorm:"-"`
	ResponseCount        int `json:"response_count" gorm:"-"`
	CurrentVersionCount  int `json:"current_version_count" gorm:"-"`
	OutdatedVersionCount int `json:"outdated_version_count" gorm:"-"`
}

func (Survey) TableName() string {
	return "surveys"
}

// IsOpen reports whether the survey currently accepts submissions.
func (s *Survey) IsOpen(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.DueDate != nil && now.After(*s.DueDate) {
		return false
	}
	return true
}
