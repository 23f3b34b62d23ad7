package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of survey events
type EventType string

const (
	// Survey lifecycle events
	EventSurveyPublished     EventType = "survey.published"
	EventSurveyVersionBumped EventType = "survey.version_bumped"
	EventSurveyAssigned      EventType = "survey.assigned"

	// Response events
	EventResponseSubmitted EventType = "response.submitted"
)

const eventSource = "survey-service"

// SurveyEvent is the base event structure for all survey events
type SurveyEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type SurveyPublishedEvent struct {
	SurveyID    uint       `json:"survey_id"`
	SurveyTitle string     `json:"survey_title"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatorID   string     `json:"creator_id"`
}

type SurveyVersionBumpedEvent struct {
	SurveyID   uint      `json:"survey_id"`
	NewVersion int       `json:"new_version"`
	ActorID    string    `json:"actor_id"`
	BumpedAt   time.Time `json:"bumped_at"`
}

type SurveyAssignedEvent struct {
	SurveyID   uint   `json:"survey_id"`
	SectionIDs []uint `json:"section_ids"`
	ActorID    string `json:"actor_id"`
}

type ResponseSubmittedEvent struct {
	ResponseID    uint      `json:"response_id"`
	SurveyID      uint      `json:"survey_id"`
	SurveyVersion int       `json:"survey_version"`
	StudentID     string    `json:"student_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Event factory functions

func NewSurveyPublishedEvent(surveyID uint, title string, dueDate *time.Time, creatorID string) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventSurveyPublished,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: SurveyPublishedEvent{
			SurveyID:    surveyID,
			SurveyTitle: title,
			DueDate:     dueDate,
			CreatorID:   creatorID,
		},
	}
}

func NewSurveyVersionBumpedEvent(surveyID uint, newVersion int, actorID string, bumpedAt time.Time) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventSurveyVersionBumped,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: SurveyVersionBumpedEvent{
			SurveyID:   surveyID,
			NewVersion: newVersion,
			ActorID:    actorID,
			BumpedAt:   bumpedAt,
		},
	}
}

func NewSurveyAssignedEvent(surveyID uint, sectionIDs []uint, actorID string) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventSurveyAssigned,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: SurveyAssignedEvent{
			SurveyID:   surveyID,
			SectionIDs: sectionIDs,
			ActorID:    actorID,
		},
	}
}

func NewResponseSubmittedEvent(responseID, surveyID uint, surveyVersion int, studentID string, submittedAt time.Time) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventResponseSubmitted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: ResponseSubmittedEvent{
			ResponseID:    responseID,
			SurveyID:      surveyID,
			SurveyVersion: surveyVersion,
			StudentID:     studentID,
			SubmittedAt:   submittedAt,
		},
	}
}

// GenerateEventID returns a unique identifier for a new event.
func GenerateEventID() string {
	return uuid.NewString()
}
