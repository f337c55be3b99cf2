package resources

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/letterrip/workspace-mcp/internal/gmail"
	"github.com/letterrip/workspace-mcp/internal/mcp/oauth"
)

func TestAccountFromContext(t *testing.T) {
	if got := accountFromContext(context.Background()); got != "default" {
		t.Errorf("accountFromContext() = %q, expected %q", got, "default")
	}

	ctx := oauth.ContextWithUserInfo(context.Background(), &oauth.GoogleUserInfo{
		Email: "alice@example.com",
	})
	if got := accountFromContext(ctx); got != "alice@example.com" {
		t.Errorf("accountFromContext() = %q, expected OAuth email", got)
	}
}

func TestHandleTriageCategories(t *testing.T) {
	request := mcp.ReadResourceRequest{}
	request.Params.URI = "triage://categories"

	contents, err := handleTriageCategories(context.Background(), request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 resource content, got %d", len(contents))
	}

	text, ok := contents[0].(*mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected text contents, got %T", contents[0])
	}
	if text.URI != "triage://categories" {
		t.Errorf("unexpected URI: %s", text.URI)
	}
	if text.MIMEType != "application/json" {
		t.Errorf("unexpected MIME type: %s", text.MIMEType)
	}

	var payload struct {
		Categories []map[string]string `json:"categories"`
	}
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(payload.Categories) != len(gmail.Categories()) {
		t.Fatalf("expected %d categories, got %d", len(gmail.Categories()), len(payload.Categories))
	}
	if !strings.Contains(text.Text, "Write-Reply") {
		t.Errorf("expected label names in payload:\n%s", text.Text)
	}
}
