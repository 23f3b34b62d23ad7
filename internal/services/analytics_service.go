package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gizmo-edu/survey-service/internal/cache"
	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
)

const (
	analyticsCacheTTL = 5 * time.Minute
	wordCloudLimit    = 50
	timelineDays      = 30
)

var wordPattern = regexp.MustCompile(`[a-zA-Z]{3,}`)

// stopWords are excluded from word clouds.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "get": {}, "has": {}, "him": {},
	"his": {}, "how": {}, "its": {}, "may": {}, "now": {}, "see": {},
	"two": {}, "way": {}, "who": {}, "did": {}, "that": {}, "this": {},
	"with": {}, "have": {}, "from": {}, "they": {}, "been": {},
	"were": {}, "what": {}, "when": {}, "will": {}, "would": {},
	"there": {}, "their": {}, "about": {}, "which": {}, "them": {},
	"than": {}, "then": {}, "some": {}, "more": {}, "very": {},
	"just": {}, "like": {}, "also": {}, "into": {}, "over": {},
	"such": {}, "only": {}, "other": {}, "could": {}, "should": {},
	"because": {},
}

type analyticsService struct {
	repo   repositories.Repository
	logger *slog.Logger
	cache  cache.CacheService
}

func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger, c cache.CacheService) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger,
		cache:  c,
	}
}

// GetSurveyAnalytics aggregates every active question plus section completion
// and the version breakdown. Unfiltered results are cached briefly; any
// filter bypasses the cache.
func (s *analyticsService) GetSurveyAnalytics(ctx context.Context, surveyID uint, filters repositories.ResponseFilters, userID string) (*models.SurveyAnalytics, error) {
	if err := s.checkCanView(ctx, surveyID, userID); err != nil {
		return nil, err
	}

	cacheable := isUnfiltered(filters)
	cacheKey := s.surveyCacheKey(surveyID)

	if cacheable {
		var cached models.SurveyAnalytics
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("Analytics cache read failed", "survey_id", surveyID, "error", err)
		}
		if hit {
			return &cached, nil
		}
	}

	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, surveyID, false)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}

	analytics := &models.SurveyAnalytics{
		SurveyID:      surveyID,
		SurveyVersion: survey.Version,
	}

	for i := range survey.Questions {
		qa, err := s.aggregateQuestion(ctx, &survey.Questions[i], filters)
		if err != nil {
			return nil, err
		}
		analytics.Questions = append(analytics.Questions, *qa)
	}

	count, err := s.repo.Response().CountBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}
	analytics.ResponseCount = int(count)

	versionCounts, err := s.repo.Response().CountByVersion(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count by version: %w", err)
	}
	for _, vc := range versionCounts {
		analytics.VersionCounts = append(analytics.VersionCounts, models.VersionCount{
			Version: vc.Version,
			Count:   vc.Count,
		})
	}

	sections, err := s.sectionCompletion(ctx, survey, filters.SurveyVersion)
	if err != nil {
		return nil, err
	}
	analytics.Sections = sections

	if cacheable {
		if err := s.cache.Set(ctx, cacheKey, analytics, analyticsCacheTTL); err != nil {
			s.logger.Warn("Analytics cache write failed", "survey_id", surveyID, "error", err)
		}
	}

	return analytics, nil
}

func (s *analyticsService) GetQuestionAnalytics(ctx context.Context, surveyID, questionID uint, filters repositories.ResponseFilters, userID string) (*models.QuestionAnalytics, error) {
	if err := s.checkCanView(ctx, surveyID, userID); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to load question: %w", err)
	}
	if question.SurveyID != surveyID {
		return nil, ErrQuestionNotInSurvey
	}

	return s.aggregateQuestion(ctx, question, filters)
}

// GetDashboard builds the teacher landing page rollup with a 30 day
// submission timeline.
func (s *analyticsService) GetDashboard(ctx context.Context, teacherID string) (*models.DashboardSummary, error) {
	stats, err := s.repo.Survey().GetCreatorStats(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator stats: %w", err)
	}

	summary := &models.DashboardSummary{
		TotalSurveys:   int(stats.TotalSurveys),
		ActiveSurveys:  int(stats.ActiveSurveys),
		TotalResponses: int(stats.TotalResponses),
	}

	since := time.Now().AddDate(0, 0, -timelineDays)
	timeline, err := s.repo.Response().Timeline(ctx, teacherID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline: %w", err)
	}
	summary.Timeline = timeline

	surveys, _, err := s.repo.Survey().List(ctx, repositories.SurveyFilters{
		CreatedBy: &teacherID,
		Limit:     10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load surveys: %w", err)
	}

	sectionIDs := make(map[uint]struct{})
	for _, survey := range surveys {
		count, err := s.repo.Response().CountBySurvey(ctx, survey.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count responses: %w", err)
		}
		summary.SurveyActivity = append(summary.SurveyActivity, models.SurveyCount{
			SurveyID: survey.ID,
			Title:    survey.Title,
			Count:    count,
		})
		for _, section := range survey.Sections {
			sectionIDs[section.ID] = struct{}{}
		}
	}

	if len(sectionIDs) > 0 {
		ids := make([]uint, 0, len(sectionIDs))
		for id := range sectionIDs {
			ids = append(ids, id)
		}
		students, err := s.repo.User().CountStudentsBySections(ctx, ids, true)
		if err != nil {
			return nil, fmt.Errorf("failed to count students: %w", err)
		}
		summary.TotalStudents = int(students)
	}

	return summary, nil
}

// Invalidate drops the cached aggregates for a survey. Called after every
// submission and version change; a miss simply recomputes.
func (s *analyticsService) Invalidate(ctx context.Context, surveyID uint) {
	if err := s.cache.Delete(ctx, s.surveyCacheKey(surveyID)); err != nil {
		s.logger.Warn("Analytics cache invalidation failed", "survey_id", surveyID, "error", err)
	}
}

// ===== AGGREGATION =====

func (s *analyticsService) aggregateQuestion(ctx context.Context, question *models.Question, filters repositories.ResponseFilters) (*models.QuestionAnalytics, error) {
	answers, err := s.repo.Response().GetAnswersByQuestion(ctx, question.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	qa := &models.QuestionAnalytics{
		QuestionID:  question.ID,
		Type:        question.Type,
		Text:        question.Text,
		AnswerCount: len(answers),
	}

	switch question.Type {
	case models.SingleChoice:
		qa.ChartKind = models.ChartPie
		qa.Choices = aggregateChoices(question, answers)
	case models.RatingScale:
		qa.ChartKind = models.ChartBar
		qa.Ratings = aggregateRatings(question, answers)
	case models.FreeText:
		qa.ChartKind = models.ChartWordCloud
		qa.Words = BuildWordCloud(answers, wordCloudLimit)
	}

	return qa, nil
}

// aggregateChoices counts selections per option in the question's option
// order, so options nobody picked still show up with zero.
func aggregateChoices(question *models.Question, answers []*models.Answer) []models.ChoiceCount {
	options, _ := question.OptionList()
	counts := make(map[string]int, len(options))
	total := 0
	for _, answer := range answers {
		if answer.Choice != nil {
			counts[*answer.Choice]++
			total++
		}
	}

	result := make([]models.ChoiceCount, 0, len(options))
	for _, option := range options {
		cc := models.ChoiceCount{Option: option, Count: counts[option]}
		if total > 0 {
			cc.Percentage = float64(cc.Count) / float64(total) * 100
		}
		result = append(result, cc)
	}
	return result
}

// aggregateRatings produces one bucket per scale value, sorted ascending.
func aggregateRatings(question *models.Question, answers []*models.Answer) []models.RatingCount {
	min, max := question.RatingBounds()
	counts := make(map[int]int)
	for _, answer := range answers {
		if answer.Rating != nil {
			counts[*answer.Rating]++
		}
	}

	result := make([]models.RatingCount, 0, max-min+1)
	for value := min; value <= max; value++ {
		result = append(result, models.RatingCount{Value: value, Count: counts[value]})
	}
	return result
}

// BuildWordCloud lowercases the text answers, keeps alphabetic words of three
// or more letters, drops stop words, and returns the top N by frequency.
// Ties break alphabetically so the output is stable.
func BuildWordCloud(answers []*models.Answer, limit int) []models.WordWeight {
	freq := make(map[string]int)
	for _, answer := range answers {
		if answer.Text == nil {
			continue
		}
		for _, word := range wordPattern.FindAllString(strings.ToLower(*answer.Text), -1) {
			if _, skip := stopWords[word]; skip {
				continue
			}
			freq[word]++
		}
	}

	words := make([]models.WordWeight, 0, len(freq))
	for word, count := range freq {
		words = append(words, models.WordWeight{Text: word, Weight: count})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Weight != words[j].Weight {
			return words[i].Weight > words[j].Weight
		}
		return words[i].Text < words[j].Text
	})

	if len(words) > limit {
		words = words[:limit]
	}
	return words
}

func (s *analyticsService) sectionCompletion(ctx context.Context, survey *models.Survey, version *int) ([]models.SectionCompletion, error) {
	result := make([]models.SectionCompletion, 0, len(survey.Sections))
	for _, section := range survey.Sections {
		students, err := s.repo.User().CountStudentsBySections(ctx, []uint{section.ID}, true)
		if err != nil {
			return nil, fmt.Errorf("failed to count section students: %w", err)
		}
		responses, err := s.repo.Response().CountBySection(ctx, survey.ID, section.ID, version)
		if err != nil {
			return nil, fmt.Errorf("failed to count section responses: %w", err)
		}

		sc := models.SectionCompletion{
			SectionID:     section.ID,
			SectionName:   section.Name,
			StudentCount:  int(students),
			ResponseCount: int(responses),
		}
		if students > 0 {
			sc.CompletionRate = float64(responses) / float64(students) * 100
		}
		result = append(result, sc)
	}
	return result, nil
}

func isUnfiltered(f repositories.ResponseFilters) bool {
	return f.SurveyVersion == nil && f.SectionID == nil &&
		f.DateFrom == nil && f.DateTo == nil
}

// ===== PERMISSIONS =====

func (s *analyticsService) checkCanView(ctx context.Context, surveyID uint, userID string) error {
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
		return NewPermissionError(userID, surveyID, "analytics", "view", "not the survey owner")
	}
	return nil
}

func (s *analyticsService) surveyCacheKey(surveyID uint) string {
	return fmt.Sprintf("analytics:survey:%d", surveyID)
}
