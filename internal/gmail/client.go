package gmail

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/letterrip/workspace-mcp/internal/google"
)

const defaultMaxResults = 25

// Client wraps the Gmail service for a single account.
type Client struct {
	svc           *gmail.Service
	account       string
	tokenProvider google.TokenProvider

	mu       sync.Mutex
	labelIDs map[Category]string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccountWithProvider creates a new Gmail client authenticated
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

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:           svc,
		account:       account,
		tokenProvider: tokenProvider,
	}, nil
}

// NewClientForAccount creates a new Gmail client using the default
// file-based token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClient creates a new Gmail client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, google.DefaultAccount)
}

// GetProfile returns the account's Gmail profile.
func (c *Client) GetProfile() (*Profile, error) {
	p, err := c.svc.Users.GetProfile("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &Profile{
		EmailAddress:  p.EmailAddress,
		MessagesTotal: p.MessagesTotal,
		ThreadsTotal:  p.ThreadsTotal,
		HistoryID:     p.HistoryId,
	}, nil
}

// EnsureLabels resolves the Gmail label ID for every classification
// category, creating labels that do not exist yet. The mapping is cached on
// the client.
func (c *Client) EnsureLabels() (map[Category]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.labelIDs != nil {
		return c.labelIDs, nil
	}

	existing, err := c.listLabelsByNormalizedName()
	if err != nil {
		return nil, err
	}

	ids := make(map[Category]string, len(labelNames))
	for _, category := range Categories() {
		name := category.LabelName()
		if id, ok := existing[normalizeLabelName(name)]; ok {
			ids[category] = id
			continue
		}

		created, err := c.svc.Users.Labels.Create("me", &gmail.Label{
			Name:                  name,
			LabelListVisibility:   "labelShow",
			MessageListVisibility: "show",
		}).Do()
		if err == nil {
			ids[category] = created.Id
			continue
		}

		// A concurrent create, or a spelling Gmail considers equivalent,
		// yields a conflict; re-list and pick up the winner.
		if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 409 {
			refreshed, listErr := c.listLabelsByNormalizedName()
			if listErr == nil {
				if id, ok := refreshed[normalizeLabelName(name)]; ok {
					ids[category] = id
					continue
				}
			}
		}
		return nil, fmt.Errorf("failed to create label %s: %w", name, err)
	}

	c.labelIDs = ids
	return ids, nil
}

// ListLabels returns every label on the account, user-created and system
// alike, sorted by name. Useful when diagnosing why a triage label did not
// match.
func (c *Client) ListLabels() ([]LabelInfo, error) {
	resp, err := c.svc.Users.Labels.List("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	labels := make([]LabelInfo, 0, len(resp.Labels))
	for _, label := range resp.Labels {
		labels = append(labels, LabelInfo{
			ID:   label.Id,
			Name: label.Name,
			Type: label.Type,
		})
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	return labels, nil
}

func (c *Client) listLabelsByNormalizedName() (map[string]string, error) {
	resp, err := c.svc.Users.Labels.List("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	byName := make(map[string]string, len(resp.Labels))
	for _, label := range resp.Labels {
		byName[normalizeLabelName(label.Name)] = label.Id
	}
	return byName, nil
}

func (c *Client) labelID(category Category) (string, error) {
	if !category.Valid() {
		return "", fmt.Errorf("unknown category %q", category)
	}
	ids, err := c.EnsureLabels()
	if err != nil {
		return "", err
	}
	return ids[category], nil
}

// ListUnprocessed returns inbox messages that carry none of the
// classification labels yet, newest first.
func (c *Client) ListUnprocessed(query UnprocessedQuery) ([]Email, error) {
	q := buildUnprocessedQuery(query)

	max := query.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}

	resp, err := c.svc.Users.Messages.List("me").Q(q).MaxResults(max).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	emails := make([]Email, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := c.svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From", "To", "Date").
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, err)
		}
		emails = append(emails, toEmail(msg, false))
	}
	return emails, nil
}

// GetEmail retrieves a full message including its decoded plain-text body.
func (c *Client) GetEmail(messageID string) (*Email, error) {
	msg, err := c.svc.Users.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	email := toEmail(msg, true)
	return &email, nil
}

// ApplyLabel adds the category's label to a message, creating the label if
// necessary.
func (c *Client) ApplyLabel(messageID string, category Category) error {
	id, err := c.labelID(category)
	if err != nil {
		return err
	}

	_, err = c.svc.Users.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{id},
	}).Do()
	if err != nil {
		return fmt.Errorf("failed to apply label %s to message %s: %w", category.LabelName(), messageID, err)
	}
	return nil
}

// RemoveLabel removes the category's label from a message.
func (c *Client) RemoveLabel(messageID string, category Category) error {
	id, err := c.labelID(category)
	if err != nil {
		return err
	}

	_, err = c.svc.Users.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{id},
	}).Do()
	if err != nil {
		return fmt.Errorf("failed to remove label %s from message %s: %w", category.LabelName(), messageID, err)
	}
	return nil
}

// CreateDraft creates a draft, threaded into an existing conversation when
// the input carries a thread ID.
func (c *Client) CreateDraft(input DraftInput) (string, error) {
	if len(input.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if input.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	var inReplyTo, references string
	if input.ReplyToMessageID != "" {
		original, err := c.svc.Users.Messages.Get("me", input.ReplyToMessageID).
			Format("metadata").
			MetadataHeaders("Message-ID", "References", "Subject").
			Do()
		if err != nil {
			return "", fmt.Errorf("failed to get original message: %w", err)
		}

		originalMessageID := headerValue(original, "Message-ID")
		inReplyTo = originalMessageID
		if prior := headerValue(original, "References"); prior != "" {
			references = prior + " " + originalMessageID
		} else {
			references = originalMessageID
		}
		if input.Subject == "" {
			input.Subject = replySubject(headerValue(original, "Subject"))
		}
		if input.ThreadID == "" {
			input.ThreadID = original.ThreadId
		}
	}

	raw := buildDraftMIME(input, inReplyTo, references)
	draft := &gmail.Draft{
		Message: &gmail.Message{
			Raw:      raw,
			ThreadId: input.ThreadID,
		},
	}

	created, err := c.svc.Users.Drafts.Create("me", draft).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", err)
	}
	return created.Id, nil
}

// ListDrafts lists the user's drafts, most recent first.
func (c *Client) ListDrafts(maxResults int64) ([]DraftSummary, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	resp, err := c.svc.Users.Drafts.List("me").MaxResults(maxResults).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	summaries := make([]DraftSummary, 0, len(resp.Drafts))
	for _, ref := range resp.Drafts {
		draft, err := c.svc.Users.Drafts.Get("me", ref.Id).Format("metadata").Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get draft %s: %w", ref.Id, err)
		}

		summary := DraftSummary{ID: draft.Id}
		if draft.Message != nil {
			summary.Subject = headerValue(draft.Message, "Subject")
			summary.To = headerValue(draft.Message, "To")
			summary.Snippet = draft.Message.Snippet
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListSent returns recently sent mail, optionally restricted to a
// recipient. Useful for sampling the user's writing style before drafting
// a reply on their behalf.
func (c *Client) ListSent(recipient string, maxResults int64) ([]Email, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	q := "in:sent"
	if recipient != "" {
		q += " to:" + recipient
	}

	resp, err := c.svc.Users.Messages.List("me").Q(q).MaxResults(maxResults).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list sent messages: %w", err)
	}

	emails := make([]Email, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := c.svc.Users.Messages.Get("me", ref.Id).Format("full").Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, err)
		}
		emails = append(emails, toEmail(msg, true))
	}
	return emails, nil
}

// buildUnprocessedQuery assembles the Gmail search query for inbox mail
// that carries none of the classification labels.
func buildUnprocessedQuery(query UnprocessedQuery) string {
	terms := []string{"in:inbox"}
	for _, category := range Categories() {
		terms = append(terms, fmt.Sprintf("-label:%s", category.LabelName()))
	}

	if query.NewerThanDays > 0 {
		terms = append(terms, fmt.Sprintf("newer_than:%dd", query.NewerThanDays))
	}
	if query.Sender != "" {
		terms = append(terms, "from:"+query.Sender)
	} else if query.Domain != "" {
		terms = append(terms, "from:*@"+query.Domain)
	}
	if query.After != "" {
		terms = append(terms, "after:"+query.After)
	}
	if query.Before != "" {
		terms = append(terms, "before:"+query.Before)
	}

	return strings.Join(terms, " ")
}

// replySubject prefixes "Re: " unless already present.
func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

func toEmail(msg *gmail.Message, includeBody bool) Email {
	email := Email{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Subject:  headerValue(msg, "Subject"),
		From:     headerValue(msg, "From"),
		To:       headerValue(msg, "To"),
		Snippet:  msg.Snippet,
		Labels:   msg.LabelIds,
	}
	if msg.InternalDate > 0 {
		email.Date = time.UnixMilli(msg.InternalDate).UTC()
	}
	if includeBody {
		email.Body = extractBody(msg.Payload)
	}
	return email
}
