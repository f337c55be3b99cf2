package slides_tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/letterrip/workspace-mcp/internal/server"
)

func TestRequiredPresentationID(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		want    string
		wantErr bool
	}{
		{
			name: "present",
			args: map[string]interface{}{"presentationId": "deck-1"},
			want: "deck-1",
		},
		{
			name:    "missing",
			args:    map[string]interface{}{},
			wantErr: true,
		},
		{
			name:    "empty",
			args:    map[string]interface{}{"presentationId": ""},
			wantErr: true,
		},
		{
			name:    "wrong type",
			args:    map[string]interface{}{"presentationId": 7},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := requiredPresentationID(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("requiredPresentationID() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestNumberArg(t *testing.T) {
	args := map[string]interface{}{
		"x":     float64(250),
		"wrong": "not a number",
	}

	if got := numberArg(args, "x", 100); got != 250 {
		t.Errorf("numberArg() = %v, expected 250", got)
	}
	if got := numberArg(args, "missing", 400); got != 400 {
		t.Errorf("numberArg() on missing key = %v, expected fallback 400", got)
	}
	if got := numberArg(args, "wrong", 100); got != 100 {
		t.Errorf("numberArg() on wrong type = %v, expected fallback 100", got)
	}
}

func TestHandleCreateSlideRejectsUnknownLayout(t *testing.T) {
	ctx := context.Background()
	serverContext, err := server.NewServerContext(ctx)
	if err != nil {
		t.Fatalf("Failed to create server context: %v", err)
	}
	defer serverContext.Shutdown()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "slides_create_slide",
			Arguments: map[string]interface{}{
				"presentationId": "deck-1",
				"layout":         "SIDEWAYS",
			},
		},
	}

	result, err := handleCreateSlide(ctx, request, serverContext)
	if err != nil {
		t.Fatalf("handleCreateSlide() unexpected error = %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result for unknown layout")
	}
}

func TestPredefinedLayoutsIncludeDefault(t *testing.T) {
	if !predefinedLayouts["BLANK"] {
		t.Error("BLANK must be an accepted layout")
	}
	if predefinedLayouts[""] {
		t.Error("empty layout must not be accepted directly")
	}
}
