package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/validator"
)

const exportTimeFormat = "2006-01-02 15:04:05"

type exportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	analytics AnalyticsService
}

func NewExportService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	analytics AnalyticsService,
) ExportService {
	return &exportService{
		repo:      repo,
		logger:    logger,
		validator: v,
		analytics: analytics,
	}
}

// ExportResponses renders every submission for a survey as a flat table,
// one row per response with question columns in display order. Questions
// are included even when inactive so historical answers keep their column.
func (s *exportService) ExportResponses(ctx context.Context, req *models.ExportRequest, userID string) (*models.ExportResult, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.Translate(err)
	}
	if err := s.checkCanExport(ctx, req.SurveyID, userID); err != nil {
		return nil, err
	}

	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, req.SurveyID, true)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}

	filters := repositories.ResponseFilters{
		SurveyVersion: req.Version,
		SectionID:     req.SectionID,
		DateFrom:      req.DateFrom,
		DateTo:        req.DateTo,
		Limit:         -1,
	}
	responses, _, err := s.repo.Response().GetBySurvey(ctx, req.SurveyID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	header, rows := buildResponseTable(survey, responses)

	switch req.Format {
	case "csv":
		data, err := writeCSV(header, rows)
		if err != nil {
			return nil, err
		}
		return &models.ExportResult{
			FileName:    exportFileName(survey, "responses", "csv"),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	default:
		data, err := writeResponsesXLSX(header, rows)
		if err != nil {
			return nil, err
		}
		return &models.ExportResult{
			FileName:    exportFileName(survey, "responses", "xlsx"),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	}
}

// ExportAnalytics writes the aggregated survey analytics to a workbook with
// a summary sheet, a section completion sheet, and one sheet per question.
func (s *exportService) ExportAnalytics(ctx context.Context, surveyID uint, userID string) (*models.ExportResult, error) {
	if err := s.checkCanExport(ctx, surveyID, userID); err != nil {
		return nil, err
	}

	survey, err := s.repo.Survey().GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}

	analytics, err := s.analytics.GetSurveyAnalytics(ctx, surveyID, repositories.ResponseFilters{}, userID)
	if err != nil {
		return nil, err
	}

	data, err := writeAnalyticsXLSX(survey, analytics)
	if err != nil {
		return nil, err
	}

	return &models.ExportResult{
		FileName:    exportFileName(survey, "analytics", "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

// ===== TABLE BUILDING =====

func buildResponseTable(survey *models.Survey, responses []*models.SurveyResponse) ([]string, [][]string) {
	header := []string{"Student Name", "Username", "Section", "Submitted At", "Survey Version"}
	columnIndex := make(map[uint]int, len(survey.Questions))
	for i := range survey.Questions {
		question := &survey.Questions[i]
		columnIndex[question.ID] = len(header)
		header = append(header, question.Text)
	}

	rows := make([][]string, 0, len(responses))
	for _, response := range responses {
		row := make([]string, len(header))
		row[0] = response.Student.FullName
		row[1] = response.Student.Username
		if response.Student.Section != nil {
			row[2] = response.Student.Section.Name
		}
		row[3] = response.SubmittedAt.Format(exportTimeFormat)
		row[4] = fmt.Sprintf("%d", response.SurveyVersion)

		for i := range response.Answers {
			answer := &response.Answers[i]
			if col, ok := columnIndex[answer.QuestionID]; ok {
				row[col] = answer.Value()
			}
		}
		rows = append(rows, row)
	}

	return header, rows
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func writeResponsesXLSX(header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Responses"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, value := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, value)
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAnalyticsXLSX(survey *models.Survey, analytics *models.SurveyAnalytics) ([]byte, error) {
	f := excelize.NewFile()

	summary := "Summary"
	index, err := f.NewSheet(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	summaryRows := [][]interface{}{
		{"Survey", survey.Title},
		{"Current Version", analytics.SurveyVersion},
		{"Total Responses", analytics.ResponseCount},
		{"Exported At", time.Now().Format(exportTimeFormat)},
		{},
		{"Version", "Responses"},
	}
	for _, vc := range analytics.VersionCounts {
		summaryRows = append(summaryRows, []interface{}{vc.Version, vc.Count})
	}
	writeSheetRows(f, summary, summaryRows)

	if len(analytics.Sections) > 0 {
		sections := "Sections"
		if _, err := f.NewSheet(sections); err != nil {
			return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
		}
		sectionRows := [][]interface{}{
			{"Section", "Students", "Responses", "Completion %"},
		}
		for _, sc := range analytics.Sections {
			sectionRows = append(sectionRows, []interface{}{
				sc.SectionName, sc.StudentCount, sc.ResponseCount,
				fmt.Sprintf("%.1f", sc.CompletionRate),
			})
		}
		writeSheetRows(f, sections, sectionRows)
	}

	for i := range analytics.Questions {
		qa := &analytics.Questions[i]
		sheetName := fmt.Sprintf("Q%d", i+1)
		if _, err := f.NewSheet(sheetName); err != nil {
			return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
		}
		writeSheetRows(f, sheetName, questionSheetRows(qa))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func questionSheetRows(qa *models.QuestionAnalytics) [][]interface{} {
	rows := [][]interface{}{
		{"Question", qa.Text},
		{"Type", string(qa.Type)},
		{"Answers", qa.AnswerCount},
		{},
	}

	switch qa.Type {
	case models.SingleChoice:
		rows = append(rows, []interface{}{"Option", "Count", "Percentage"})
		for _, cc := range qa.Choices {
			rows = append(rows, []interface{}{cc.Option, cc.Count, fmt.Sprintf("%.1f", cc.Percentage)})
		}
	case models.RatingScale:
		rows = append(rows, []interface{}{"Rating", "Count"})
		for _, rc := range qa.Ratings {
			rows = append(rows, []interface{}{rc.Value, rc.Count})
		}
	case models.FreeText:
		rows = append(rows, []interface{}{"Word", "Weight"})
		for _, ww := range qa.Words {
			rows = append(rows, []interface{}{ww.Text, ww.Weight})
		}
	}

	return rows
}

func writeSheetRows(f *excelize.File, sheetName string, rows [][]interface{}) {
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}
}

func exportFileName(survey *models.Survey, kind, ext string) string {
	return fmt.Sprintf("survey_%d_%s_%s.%s", survey.ID, kind, time.Now().Format("20060102"), ext)
}

// ===== PERMISSIONS =====

func (s *exportService) checkCanExport(ctx context.Context, surveyID uint, userID string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.Role == models.RoleAdmin {
		return nil
	}

	isOwner, err := s.repo.Survey().IsOwner(ctx, surveyID, userID)
	if err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if !isOwner {
		return NewPermissionError(userID, surveyID, "survey", "export", "not the survey owner")
	}
	return nil
}
