package models

import "time"

// ChartKind tells the client which visualization fits the aggregate.
type ChartKind string

const (
	ChartPie       ChartKind = "pie"
	ChartBar       ChartKind = "bar"
	ChartWordCloud ChartKind = "word_cloud"
)

// QuestionAnalytics holds the aggregate for one question over completed
// responses. Exactly one of Choices, Ratings or Words is populated,
// matching the question type.
type QuestionAnalytics struct {
	QuestionID  uint          `json:"question_id"`
	Type        QuestionType  `json:"type"`
	Text        string        `json:"text"`
	ChartKind   ChartKind     `json:"chart_kind"`
	AnswerCount int           `json:"answer_count"`
	Choices     []ChoiceCount `json:"choices,omitempty"`
	Ratings     []RatingCount `json:"ratings,omitempty"`
	Words       []WordWeight  `json:"words,omitempty"`
}

type ChoiceCount struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type RatingCount struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

type WordWeight struct {
	Text   string `json:"text"`
	Weight int    `json:"weight"`
}

// SurveyAnalytics is the full aggregate view a teacher sees.
type SurveyAnalytics struct {
	SurveyID      uint                `json:"survey_id"`
	SurveyVersion int                 `json:"survey_version"`
	ResponseCount int                 `json:"response_count"`
	Questions     []QuestionAnalytics `json:"questions"`
	Sections      []SectionCompletion `json:"sections"`
	VersionCounts []VersionCount      `json:"version_counts"`
}

type SectionCompletion struct {
	SectionID      uint    `json:"section_id"`
	SectionName    string  `json:"section_name"`
	StudentCount   int     `json:"student_count"`
	ResponseCount  int     `json:"response_count"`
	CompletionRate float64 `json:"completion_rate"`
}

type VersionCount struct {
	Version int   `json:"version"`
	Count   int64 `json:"count"`
}

type TimelinePoint struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

// DashboardSummary is the teacher landing-page rollup.
type DashboardSummary struct {
	TotalSurveys   int             `json:"total_surveys"`
	ActiveSurveys  int             `json:"active_surveys"`
	TotalResponses int             `json:"total_responses"`
	TotalStudents  int             `json:"total_students"`
	Timeline       []TimelinePoint `json:"timeline"`
	SurveyActivity []SurveyCount   `json:"survey_activity"`
}

type SurveyCount struct {
	SurveyID uint   `json:"survey_id"`
	Title    string `json:"title"`
	Count    int64  `json:"count"`
}
