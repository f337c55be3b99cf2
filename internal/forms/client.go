package forms

import (
	"context"
	"fmt"
	"strings"
	"time"

	forms "google.golang.org/api/forms/v1"
	"google.golang.org/api/option"

	"github.com/letterrip/workspace-mcp/internal/google"
)

const maxPageSize = 5000

// Client wraps the Google Forms service for a single account.
type Client struct {
	svc           *forms.Service
	account       string
	tokenProvider google.TokenProvider
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccountWithProvider creates a new Forms client authenticated
// for a specific account. The OAuth token is retrieved from the provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	httpClient, err := google.NewHTTPClientWithToken(ctx, token)
	if err != nil {
		return nil, err
	}

	svc, err := forms.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Forms service: %w", err)
	}

	return &Client{
		svc:           svc,
		account:       account,
		tokenProvider: tokenProvider,
	}, nil
}

// NewClientForAccount creates a new Forms client using the default
// file-based token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClient creates a new Forms client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, google.DefaultAccount)
}

// GetForm retrieves the form structure including all questions.
func (c *Client) GetForm(formID string) (*FormInfo, error) {
	form, err := c.svc.Forms.Get(formID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get form %s: %w", formID, err)
	}
	return toFormInfo(form), nil
}

// ListResponses returns all responses to the form, following pagination.
func (c *Client) ListResponses(formID string) ([]Response, error) {
	var responses []Response
	pageToken := ""
	for {
		call := c.svc.Forms.Responses.List(formID).PageSize(maxPageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list responses for form %s: %w", formID, err)
		}

		for _, resp := range result.Responses {
			responses = append(responses, toResponse(resp))
		}

		pageToken = result.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return responses, nil
}

// GetResponse retrieves a single response by ID.
func (c *Client) GetResponse(formID, responseID string) (*Response, error) {
	resp, err := c.svc.Forms.Responses.Get(formID, responseID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get response %s: %w", responseID, err)
	}

	response := toResponse(resp)
	return &response, nil
}

// ResponsesAsRows returns responses in tabular form, keyed by question
// title, suitable for analysis or export. limit <= 0 means all responses.
func (c *Client) ResponsesAsRows(formID string, limit int) ([]ResponseRow, error) {
	form, err := c.GetForm(formID)
	if err != nil {
		return nil, err
	}

	responses, err := c.ListResponses(formID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(responses) > limit {
		responses = responses[:limit]
	}

	return responsesToRows(form.Questions, responses), nil
}

// ResponseSummary computes summary statistics over all responses.
func (c *Client) ResponseSummary(formID string) (*ResponseSummary, error) {
	form, err := c.GetForm(formID)
	if err != nil {
		return nil, err
	}

	responses, err := c.ListResponses(formID)
	if err != nil {
		return nil, err
	}

	summary := summarizeResponses(form.Questions, responses)
	return &summary, nil
}

func toFormInfo(form *forms.Form) *FormInfo {
	info := &FormInfo{
		ID:           form.FormId,
		ResponderURI: form.ResponderUri,
	}
	if form.Info != nil {
		info.Title = form.Info.Title
		info.Description = form.Info.Description
	}

	for _, item := range form.Items {
		if q := parseQuestion(item); q != nil {
			info.Questions = append(info.Questions, *q)
		}
	}
	return info
}

// parseQuestion extracts a Question from a form item; items without a
// question (section headers, images, videos) yield nil.
func parseQuestion(item *forms.Item) *Question {
	if item == nil || item.QuestionItem == nil || item.QuestionItem.Question == nil {
		return nil
	}

	q := item.QuestionItem.Question
	question := &Question{
		ID:       q.QuestionId,
		Title:    item.Title,
		Required: q.Required,
	}
	question.Type, question.Options = parseQuestionType(q)
	return question
}

func parseQuestionType(q *forms.Question) (string, []string) {
	switch {
	case q.TextQuestion != nil:
		if q.TextQuestion.Paragraph {
			return QuestionParagraph, nil
		}
		return QuestionText, nil

	case q.ChoiceQuestion != nil:
		options := make([]string, 0, len(q.ChoiceQuestion.Options))
		for _, opt := range q.ChoiceQuestion.Options {
			options = append(options, opt.Value)
		}
		switch q.ChoiceQuestion.Type {
		case "CHECKBOX":
			return QuestionCheckbox, options
		case "DROP_DOWN":
			return QuestionDropdown, options
		}
		return QuestionChoice, options

	case q.ScaleQuestion != nil:
		return QuestionScale, []string{fmt.Sprintf("%d-%d", q.ScaleQuestion.Low, q.ScaleQuestion.High)}

	case q.DateQuestion != nil:
		return QuestionDate, nil

	case q.TimeQuestion != nil:
		return QuestionTime, nil

	case q.FileUploadQuestion != nil:
		return QuestionFileUpload, nil

	case q.RowQuestion != nil:
		return QuestionGrid, nil
	}
	return QuestionUnknown, nil
}

func toResponse(resp *forms.FormResponse) Response {
	response := Response{
		ID:              resp.ResponseId,
		RespondentEmail: resp.RespondentEmail,
		Answers:         make(map[string][]string, len(resp.Answers)),
	}

	if t, err := time.Parse(time.RFC3339, resp.LastSubmittedTime); err == nil {
		response.SubmittedAt = t
	}

	for questionID, answer := range resp.Answers {
		var values []string
		if answer.TextAnswers != nil {
			for _, ta := range answer.TextAnswers.Answers {
				values = append(values, ta.Value)
			}
		}
		if answer.FileUploadAnswers != nil {
			for _, fa := range answer.FileUploadAnswers.Answers {
				values = append(values, fa.FileName)
			}
		}
		response.Answers[questionID] = values
	}
	return response
}

// responsesToRows flattens responses into question-title keyed rows.
// Multi-value answers are comma-joined.
func responsesToRows(questions []Question, responses []Response) []ResponseRow {
	titles := make(map[string]string, len(questions))
	for _, q := range questions {
		titles[q.ID] = q.Title
	}

	rows := make([]ResponseRow, 0, len(responses))
	for _, resp := range responses {
		row := ResponseRow{
			"_response_id":  resp.ID,
			"_submitted_at": resp.SubmittedAt.Format(time.RFC3339),
			"_email":        resp.RespondentEmail,
		}
		for questionID, values := range resp.Answers {
			title, ok := titles[questionID]
			if !ok {
				title = questionID
			}
			row[title] = strings.Join(values, ", ")
		}
		rows = append(rows, row)
	}
	return rows
}

func summarizeResponses(questions []Question, responses []Response) ResponseSummary {
	summary := ResponseSummary{
		TotalResponses: len(responses),
		QuestionStats:  make(map[string]QuestionStats, len(questions)),
	}
	if len(responses) == 0 {
		return summary
	}

	summary.FirstResponse = responses[0].SubmittedAt
	summary.LastResponse = responses[0].SubmittedAt
	for _, resp := range responses[1:] {
		if resp.SubmittedAt.Before(summary.FirstResponse) {
			summary.FirstResponse = resp.SubmittedAt
		}
		if resp.SubmittedAt.After(summary.LastResponse) {
			summary.LastResponse = resp.SubmittedAt
		}
	}

	for _, q := range questions {
		var answers []string
		for _, resp := range responses {
			answers = append(answers, resp.Answers[q.ID]...)
		}

		stats := QuestionStats{Type: q.Type, TotalAnswers: len(answers)}
		switch q.Type {
		case QuestionChoice, QuestionCheckbox, QuestionDropdown:
			stats.Distribution = make(map[string]int)
			for _, value := range answers {
				stats.Distribution[value]++
			}
		}
		summary.QuestionStats[q.Title] = stats
	}
	return summary
}
