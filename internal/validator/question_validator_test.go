package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/gizmo-edu/survey-service/internal/models"
)

func intPtr(i int) *int { return &i }

func mustEncodeOptions(t *testing.T, options []string) datatypes.JSON {
	t.Helper()
	encoded, err := EncodeOptions(options)
	require.NoError(t, err)
	return encoded
}

func TestQuestionValidator_ValidateContent(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name       string
		question   *models.Question
		wantFields []string
	}{
		{
			name: "valid single choice",
			question: &models.Question{
				Type:    models.SingleChoice,
				Text:    "Do you use the library?",
				Options: mustEncodeOptions(t, []string{"Yes", "No"}),
			},
		},
		{
			name: "valid rating scale",
			question: &models.Question{
				Type:      models.RatingScale,
				Text:      "Rate the library",
				RatingMin: intPtr(1),
				RatingMax: intPtr(10),
			},
		},
		{
			name: "valid rating scale with default bounds",
			question: &models.Question{
				Type: models.RatingScale,
				Text: "Rate the library",
			},
		},
		{
			name: "valid free text",
			question: &models.Question{
				Type: models.FreeText,
				Text: "Any suggestions?",
			},
		},
		{
			name: "missing text",
			question: &models.Question{
				Type: models.FreeText,
			},
			wantFields: []string{"text"},
		},
		{
			name: "single choice with one option",
			question: &models.Question{
				Type:    models.SingleChoice,
				Text:    "Pick one",
				Options: mustEncodeOptions(t, []string{"Only"}),
			},
			wantFields: []string{"options"},
		},
		{
			name: "single choice with no options at all",
			question: &models.Question{
				Type: models.SingleChoice,
				Text: "Pick one",
			},
			wantFields: []string{"options"},
		},
		{
			name: "single choice with blank option",
			question: &models.Question{
				Type:    models.SingleChoice,
				Text:    "Pick one",
				Options: mustEncodeOptions(t, []string{"Yes", ""}),
			},
			wantFields: []string{"options"},
		},
		{
			name: "single choice with duplicate options",
			question: &models.Question{
				Type:    models.SingleChoice,
				Text:    "Pick one",
				Options: mustEncodeOptions(t, []string{"Yes", "Yes"}),
			},
			wantFields: []string{"options"},
		},
		{
			name: "single choice with rating bounds",
			question: &models.Question{
				Type:      models.SingleChoice,
				Text:      "Pick one",
				Options:   mustEncodeOptions(t, []string{"Yes", "No"}),
				RatingMin: intPtr(1),
			},
			wantFields: []string{"rating_min"},
		},
		{
			name: "rating scale with inverted bounds",
			question: &models.Question{
				Type:      models.RatingScale,
				Text:      "Rate it",
				RatingMin: intPtr(5),
				RatingMax: intPtr(1),
			},
			wantFields: []string{"rating_max"},
		},
		{
			name: "rating scale spanning too many values",
			question: &models.Question{
				Type:      models.RatingScale,
				Text:      "Rate it",
				RatingMin: intPtr(0),
				RatingMax: intPtr(100),
			},
			wantFields: []string{"rating_max"},
		},
		{
			name: "rating scale with options",
			question: &models.Question{
				Type:    models.RatingScale,
				Text:    "Rate it",
				Options: mustEncodeOptions(t, []string{"Yes", "No"}),
			},
			wantFields: []string{"options"},
		},
		{
			name: "free text with options and bounds",
			question: &models.Question{
				Type:      models.FreeText,
				Text:      "Say more",
				Options:   mustEncodeOptions(t, []string{"Yes", "No"}),
				RatingMax: intPtr(5),
			},
			wantFields: []string{"options", "rating_min"},
		},
		{
			name: "unknown type",
			question: &models.Question{
				Type: models.QuestionType("essay"),
				Text: "Write an essay",
			},
			wantFields: []string{"type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateContent(tt.question)

			if len(tt.wantFields) == 0 {
				assert.Empty(t, errs)
				return
			}

			require.Len(t, errs, len(tt.wantFields))
			for i, field := range tt.wantFields {
				assert.Equal(t, field, errs[i].Field)
			}
		})
	}
}

func TestValidator_ValidateStruct_Translate(t *testing.T) {
	v := New()

	type payload struct {
		Type models.QuestionType `json:"type" validate:"required,question_type"`
		Text string              `json:"text" validate:"required"`
	}

	err := v.ValidateStruct(&payload{Type: "essay", Text: ""})
	require.Error(t, err)

	verrs := ToValidationErrors(err)
	require.Len(t, verrs, 2)

	fields := []string{verrs[0].Field, verrs[1].Field}
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "text")
}
