package forms

import (
	"time"
)

// Question types as reported by FormInfo. Choice-based types carry their
// options; SCALE carries a single "low-high" option.
const (
	QuestionText       = "TEXT"
	QuestionParagraph  = "PARAGRAPH"
	QuestionChoice     = "CHOICE"
	QuestionCheckbox   = "CHECKBOX"
	QuestionDropdown   = "DROPDOWN"
	QuestionScale      = "SCALE"
	QuestionDate       = "DATE"
	QuestionTime       = "TIME"
	QuestionFileUpload = "FILE_UPLOAD"
	QuestionGrid       = "GRID"
	QuestionUnknown    = "UNKNOWN"
)

// FormInfo describes a form and its questions.
type FormInfo struct {
	ID           string
	Title        string
	Description  string
	ResponderURI string
	Questions    []Question
}

// Question is a single form question with its parsed type.
type Question struct {
	ID       string
	Title    string
	Type     string
	Required bool
	Options  []string
}

// Response is a single form submission.
type Response struct {
	ID              string
	SubmittedAt     time.Time
	RespondentEmail string

	// Answers maps question ID to the answer values (checkbox questions
	// can have several).
	Answers map[string][]string
}

// ResponseRow is a tabular view of a response keyed by question title.
// The reserved keys _response_id, _submitted_at and _email carry the
// response metadata.
type ResponseRow map[string]string

// QuestionStats summarizes the answers to one question.
type QuestionStats struct {
	Type         string
	TotalAnswers int

	// Distribution maps answer value to count; only populated for
	// choice-based question types.
	Distribution map[string]int
}

// ResponseSummary aggregates all responses to a form.
type ResponseSummary struct {
	TotalResponses int
	FirstResponse  time.Time
	LastResponse   time.Time
	QuestionStats  map[string]QuestionStats
}
