package validator

import (
	"github.com/gizmo-edu/survey-service/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateContent checks that a question's type-specific fields are coherent.
// Returns every problem found so callers can surface them all at once.
func (v *QuestionValidator) ValidateContent(question *models.Question) ValidationErrors {
	var errs ValidationErrors

	if question.Text == "" {
		errs = append(errs, ValidationError{
			Field:   "text",
			Message: "question text is required",
		})
	}

	switch question.Type {
	case models.SingleChoice:
		errs = append(errs, v.validateSingleChoice(question)...)
	case models.RatingScale:
		errs = append(errs, v.validateRatingScale(question)...)
	case models.FreeText:
		errs = append(errs, v.validateFreeText(question)...)
	default:
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: "must be a valid question type (single_choice, rating_scale, free_text)",
			Value:   string(question.Type),
		})
	}

	return errs
}

func (v *QuestionValidator) validateSingleChoice(question *models.Question) ValidationErrors {
	var errs ValidationErrors

	options, err := question.OptionList()
	if err != nil {
		return append(errs, ValidationError{
			Field:   "options",
			Message: "options are not valid JSON",
		})
	}

	if len(options) < 2 {
		errs = append(errs, ValidationError{
			Field:   "options",
			Message: "must have at least 2 options",
			Value:   len(options),
		})
	}
	if len(options) > 10 {
		errs = append(errs, ValidationError{
			Field:   "options",
			Message: "cannot have more than 10 options",
			Value:   len(options),
		})
	}

	seen := make(map[string]struct{}, len(options))
	for _, option := range options {
		if option == "" {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: "options cannot be blank",
			})
			break
		}
		if _, dup := seen[option]; dup {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: "options must be unique",
				Value:   option,
			})
			break
		}
		seen[option] = struct{}{}
	}

	if question.RatingMin != nil || question.RatingMax != nil {
		errs = append(errs, ValidationError{
			Field:   "rating_min",
			Message: "rating bounds do not apply to choice questions",
		})
	}

	return errs
}

func (v *QuestionValidator) validateRatingScale(question *models.Question) ValidationErrors {
	var errs ValidationErrors

	min, max := question.RatingBounds()
	if min >= max {
		errs = append(errs, ValidationError{
			Field:   "rating_max",
			Message: "rating maximum must be greater than the minimum",
			Value:   max,
		})
	}
	if max-min > 10 {
		errs = append(errs, ValidationError{
			Field:   "rating_max",
			Message: "rating scale cannot span more than 11 values",
			Value:   max,
		})
	}

	if len(question.Options) > 0 {
		errs = append(errs, ValidationError{
			Field:   "options",
			Message: "options do not apply to rating questions",
		})
	}

	return errs
}

func (v *QuestionValidator) validateFreeText(question *models.Question) ValidationErrors {
	var errs ValidationErrors

	if len(question.Options) > 0 {
		errs = append(errs, ValidationError{
			Field:   "options",
			Message: "options do not apply to free text questions",
		})
	}
	if question.RatingMin != nil || question.RatingMax != nil {
		errs = append(errs, ValidationError{
			Field:   "rating_min",
			Message: "rating bounds do not apply to free text questions",
		})
	}

	return errs
}
