package models

import (
	"strconv"
	"time"
)

// SurveyResponse is one student's completed submission for one survey version.
// The unique index backs the one-response-per-version rule at the store level.
type SurveyResponse struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SurveyID  uint   `json:"survey_id" gorm:"not null;uniqueIndex:uniq_survey_student_version"`
	StudentID string `json:"student_id" gorm:"not null;size:255;uniqueIndex:uniq_survey_student_version"`

	// Pinned at submission time; never updated when the survey version advances
	SurveyVersion int `json:"survey_version" gorm:"not null;uniqueIndex:uniq_survey_student_version"`

	IsComplete  bool      `json:"is_complete" gorm:"default:true"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Survey  Survey   `json:"-" gorm:"foreignKey:SurveyID"`
	Student User     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

// Answer holds one typed answer row. Exactly one of the value columns is set,
// matching the question type.
type Answer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ResponseID uint `json:"response_id" gorm:"not null;uniqueIndex:uniq_response_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:uniq_response_question"`

	Choice *string `json:"choice,omitempty" gorm:"size:500"`
	Rating *int    `json:"rating,omitempty"`
	Text   *string `json:"text,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`

	Question Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Answer) TableName() string {
	return "answers"
}

// Value renders the answer as a display string regardless of type.
func (a *Answer) Value() string {
	switch {
	case a.Choice != nil:
		return *a.Choice
	case a.Rating != nil:
		return strconv.Itoa(*a.Rating)
	case a.Text != nil:
		return *a.Text
	}
	return ""
}
