package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	forms "google.golang.org/api/forms/v1"
)

func question(id, title string, answers ...string) (Question, Response) {
	q := Question{ID: id, Title: title, Type: QuestionText}
	r := Response{Answers: map[string][]string{id: answers}}
	return q, r
}

func TestParseQuestionType(t *testing.T) {
	tests := []struct {
		name        string
		q           *forms.Question
		wantType    string
		wantOptions []string
	}{
		{
			name:     "short text",
			q:        &forms.Question{TextQuestion: &forms.TextQuestion{}},
			wantType: QuestionText,
		},
		{
			name:     "paragraph",
			q:        &forms.Question{TextQuestion: &forms.TextQuestion{Paragraph: true}},
			wantType: QuestionParagraph,
		},
		{
			name: "radio choice",
			q: &forms.Question{ChoiceQuestion: &forms.ChoiceQuestion{
				Type:    "RADIO",
				Options: []*forms.Option{{Value: "Yes"}, {Value: "No"}},
			}},
			wantType:    QuestionChoice,
			wantOptions: []string{"Yes", "No"},
		},
		{
			name: "checkbox",
			q: &forms.Question{ChoiceQuestion: &forms.ChoiceQuestion{
				Type:    "CHECKBOX",
				Options: []*forms.Option{{Value: "A"}},
			}},
			wantType:    QuestionCheckbox,
			wantOptions: []string{"A"},
		},
		{
			name: "dropdown",
			q: &forms.Question{ChoiceQuestion: &forms.ChoiceQuestion{
				Type: "DROP_DOWN",
			}},
			wantType:    QuestionDropdown,
			wantOptions: []string{},
		},
		{
			name:        "scale",
			q:           &forms.Question{ScaleQuestion: &forms.ScaleQuestion{Low: 1, High: 5}},
			wantType:    QuestionScale,
			wantOptions: []string{"1-5"},
		},
		{
			name:     "date",
			q:        &forms.Question{DateQuestion: &forms.DateQuestion{}},
			wantType: QuestionDate,
		},
		{
			name:     "grid row",
			q:        &forms.Question{RowQuestion: &forms.RowQuestion{}},
			wantType: QuestionGrid,
		},
		{
			name:     "unknown",
			q:        &forms.Question{},
			wantType: QuestionUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotOptions := parseQuestionType(tt.q)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantOptions, gotOptions)
		})
	}
}

func TestParseQuestion_SkipsNonQuestionItems(t *testing.T) {
	assert.Nil(t, parseQuestion(nil))
	assert.Nil(t, parseQuestion(&forms.Item{Title: "Section header"}))
}

func TestResponsesToRows(t *testing.T) {
	questions := []Question{
		{ID: "q1", Title: "Name", Type: QuestionText},
		{ID: "q2", Title: "Toppings", Type: QuestionCheckbox},
	}
	responses := []Response{
		{
			ID:              "r1",
			SubmittedAt:     time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			RespondentEmail: "alice@example.com",
			Answers: map[string][]string{
				"q1": {"Alice"},
				"q2": {"Cheese", "Olives"},
			},
		},
	}

	rows := responsesToRows(questions, responses)
	require.Len(t, rows, 1)

	assert.Equal(t, "r1", rows[0]["_response_id"])
	assert.Equal(t, "2024-01-15T10:00:00Z", rows[0]["_submitted_at"])
	assert.Equal(t, "alice@example.com", rows[0]["_email"])
	assert.Equal(t, "Alice", rows[0]["Name"])
	assert.Equal(t, "Cheese, Olives", rows[0]["Toppings"])
}

func TestResponsesToRows_UnknownQuestionFallsBackToID(t *testing.T) {
	responses := []Response{
		{ID: "r1", Answers: map[string][]string{"deleted-q": {"x"}}},
	}

	rows := responsesToRows(nil, responses)
	require.Len(t, rows, 1)
	assert.Equal(t, "x", rows[0]["deleted-q"])
}

func TestSummarizeResponses_Empty(t *testing.T) {
	summary := summarizeResponses(nil, nil)
	assert.Equal(t, 0, summary.TotalResponses)
	assert.Empty(t, summary.QuestionStats)
}

func TestSummarizeResponses(t *testing.T) {
	questions := []Question{
		{ID: "q1", Title: "Attending?", Type: QuestionChoice},
		{ID: "q2", Title: "Comments", Type: QuestionParagraph},
	}
	responses := []Response{
		{
			SubmittedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
			Answers:     map[string][]string{"q1": {"Yes"}, "q2": {"Looking forward"}},
		},
		{
			SubmittedAt: time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC),
			Answers:     map[string][]string{"q1": {"Yes"}},
		},
		{
			SubmittedAt: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
			Answers:     map[string][]string{"q1": {"No"}},
		},
	}

	summary := summarizeResponses(questions, responses)
	assert.Equal(t, 3, summary.TotalResponses)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), summary.FirstResponse)
	assert.Equal(t, time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC), summary.LastResponse)

	attending := summary.QuestionStats["Attending?"]
	assert.Equal(t, 3, attending.TotalAnswers)
	assert.Equal(t, map[string]int{"Yes": 2, "No": 1}, attending.Distribution)

	comments := summary.QuestionStats["Comments"]
	assert.Equal(t, 1, comments.TotalAnswers)
	assert.Nil(t, comments.Distribution, "text questions have no distribution")
}

func TestToResponse(t *testing.T) {
	resp := &forms.FormResponse{
		ResponseId:        "r1",
		LastSubmittedTime: "2024-01-15T10:00:00Z",
		RespondentEmail:   "alice@example.com",
		Answers: map[string]forms.Answer{
			"q1": {
				QuestionId: "q1",
				TextAnswers: &forms.TextAnswers{
					Answers: []*forms.TextAnswer{{Value: "Yes"}},
				},
			},
		},
	}

	got := toResponse(resp)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, 2024, got.SubmittedAt.Year())
	assert.Equal(t, []string{"Yes"}, got.Answers["q1"])
}
