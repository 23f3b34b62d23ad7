package models

import "time"

type ExportRequest struct {
	SurveyID  uint       `json:"survey_id" validate:"required"`
	Format    string     `json:"format" validate:"oneof=xlsx csv"`
	SectionID *uint      `json:"section_id"`
	Version   *int       `json:"version"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
}

type ExportResult struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}
