package forms_tools

import (
	"strings"
	"testing"
	"time"

	"github.com/letterrip/workspace-mcp/internal/forms"
)

func TestRequiredFormID(t *testing.T) {
	if _, err := requiredFormID(map[string]interface{}{}); err == nil {
		t.Error("expected error for missing formId")
	}
	if _, err := requiredFormID(map[string]interface{}{"formId": ""}); err == nil {
		t.Error("expected error for empty formId")
	}
	got, err := requiredFormID(map[string]interface{}{"formId": "form-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "form-1" {
		t.Errorf("requiredFormID() = %q, expected %q", got, "form-1")
	}
}

func TestWriteResponse(t *testing.T) {
	resp := &forms.Response{
		ID:              "resp-1",
		SubmittedAt:     time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
		RespondentEmail: "alice@example.com",
		Answers: map[string][]string{
			"q2": {"Blue", "Green"},
			"q1": {"Alice"},
		},
	}
	titles := map[string]string{
		"q1": "Name",
		"q2": "Favorite colors",
	}

	var b strings.Builder
	writeResponse(&b, resp, titles)
	out := b.String()

	if !strings.Contains(out, "Response: resp-1") {
		t.Errorf("missing response ID:\n%s", out)
	}
	if !strings.Contains(out, "Respondent: alice@example.com") {
		t.Errorf("missing respondent:\n%s", out)
	}
	if !strings.Contains(out, "Name: Alice") {
		t.Errorf("question ID not mapped to title:\n%s", out)
	}
	if !strings.Contains(out, "Favorite colors: Blue; Green") {
		t.Errorf("multi-value answer not joined:\n%s", out)
	}
}

func TestWriteResponseWithoutTitles(t *testing.T) {
	resp := &forms.Response{
		ID: "resp-2",
		Answers: map[string][]string{
			"q1": {"hello"},
		},
	}

	var b strings.Builder
	writeResponse(&b, resp, nil)
	out := b.String()

	// Without a title map the raw question ID is shown.
	if !strings.Contains(out, "q1: hello") {
		t.Errorf("expected raw question ID fallback:\n%s", out)
	}
	if strings.Contains(out, "Submitted:") {
		t.Errorf("zero submission time should be omitted:\n%s", out)
	}
}
