package slides_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/server"
	"github.com/letterrip/workspace-mcp/internal/slides"
	"github.com/letterrip/workspace-mcp/internal/tools/common"
)

// getSlidesClient returns the Slides client for the account, with an
// actionable authorization message when no token is available.
func getSlidesClient(_ context.Context, account string, sc *server.ServerContext) (*slides.Client, error) {
	if !sc.HasTokenForAccount(account) {
		return nil, authRequiredError(account)
	}
	return sc.SlidesClientForAccount(account)
}

func authRequiredError(account string) error {
	authURL, err := google.GetAuthURLForAccount(account)
	if err != nil {
		return fmt.Errorf("no Google OAuth token for account %q, and OAuth is not configured: %w", account, err)
	}
	return fmt.Errorf(`Google OAuth token not found for account %q. To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant access
3. Copy the authorization code
4. Call the google_save_auth_code tool with the code and account=%q

You only need to authorize once; tokens are refreshed automatically.`, account, authURL, account)
}

// predefinedLayouts are the layout names accepted by the Slides API for
// new slides.
var predefinedLayouts = map[string]bool{
	"BLANK":                 true,
	"TITLE":                 true,
	"TITLE_AND_BODY":        true,
	"TITLE_AND_TWO_COLUMNS": true,
	"TITLE_ONLY":            true,
	"SECTION_HEADER":        true,
	"ONE_COLUMN_TEXT":       true,
	"MAIN_POINT":            true,
	"BIG_NUMBER":            true,
}

// RegisterSlidesTools registers all Slides tools. Write operations
// (create presentation/slide, add text) are skipped in read-only mode.
func RegisterSlidesTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getPresentationTool := mcp.NewTool("slides_get_presentation",
		mcp.WithDescription("Get presentation metadata: title and slide count"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The presentation ID (from its URL)"),
		),
	)

	s.AddTool(getPresentationTool, common.InstrumentedToolHandlerWithService(
		"slides_get_presentation", "slides", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetPresentation(ctx, request, sc)
		}))

	listSlidesTool := mcp.NewTool("slides_list_slides",
		mcp.WithDescription("List the slides of a presentation"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The presentation ID (from its URL)"),
		),
	)

	s.AddTool(listSlidesTool, common.InstrumentedToolHandlerWithService(
		"slides_list_slides", "slides", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSlides(ctx, request, sc)
		}))

	getSlideTextTool := mcp.NewTool("slides_get_slide_text",
		mcp.WithDescription("Get the text content of a single slide"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The presentation ID (from its URL)"),
		),
		mcp.WithNumber("slideNumber",
			mcp.Required(),
			mcp.Description("1-based slide number"),
		),
	)

	s.AddTool(getSlideTextTool, common.InstrumentedToolHandlerWithService(
		"slides_get_slide_text", "slides", "read", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSlideText(ctx, request, sc)
		}))

	getAllTextTool := mcp.NewTool("slides_get_all_text",
		mcp.WithDescription("Get the text content of every slide in a presentation"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The presentation ID (from its URL)"),
		),
	)

	s.AddTool(getAllTextTool, common.InstrumentedToolHandlerWithService(
		"slides_get_all_text", "slides", "read", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAllText(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createPresentationTool := mcp.NewTool("slides_create_presentation",
		mcp.WithDescription("Create a new, empty Google Slides presentation"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title for the new presentation"),
		),
	)

	s.AddTool(createPresentationTool, common.InstrumentedToolHandlerWithService(
		"slides_create_presentation", "slides", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreatePresentation(ctx, request, sc)
		}))

	createSlideTool := mcp.NewTool("slides_create_slide",
		mcp.WithDescription("Append a new slide to a presentation"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The presentation ID (from its URL)"),
		),
		mcp.WithString("layout",
			mcp.Description("Predefined layout: BLANK (default), TITLE, TITLE_AND_BODY, TITLE_AND_TWO_COLUMNS, TITLE_ONLY, SECTION_HEADER, ONE_COLUMN_TEXT, MAIN_POINT or BIG_NUMBER"),
		),
	)

	s.AddTool(createSlideTool, common.InstrumentedToolHandlerWithService(
		"slides_create_slide", "slides", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateSlide(ctx, request, sc)
		}))

	addTextTool := mcp.NewTool("slides_add_text_to_slide",
		mcp.WithDescription("Add a text box to a slide"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The presentation ID (from its URL)"),
		),
		mcp.WithNumber("slideNumber",
			mcp.Required(),
			mcp.Description("1-based slide number"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text content of the new text box"),
		),
		mcp.WithNumber("x",
			mcp.Description("X position in points from the left edge (default: 100)"),
		),
		mcp.WithNumber("y",
			mcp.Description("Y position in points from the top edge (default: 100)"),
		),
		mcp.WithNumber("width",
			mcp.Description("Width in points (default: 400)"),
		),
		mcp.WithNumber("height",
			mcp.Description("Height in points (default: 100)"),
		),
	)

	s.AddTool(addTextTool, common.InstrumentedToolHandlerWithService(
		"slides_add_text_to_slide", "slides", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddTextToSlide(ctx, request, sc)
		}))

	return nil
}

// stringArg returns the named string argument, or "" when absent.
func stringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

func requiredPresentationID(args map[string]interface{}) (string, error) {
	id := stringArg(args, "presentationId")
	if id == "" {
		return "", fmt.Errorf("presentationId is required")
	}
	return id, nil
}

func handleGetPresentation(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, err := requiredPresentationID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.GetPresentation(presentationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get presentation: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Presentation: %s\n", info.Title)
	fmt.Fprintf(&b, "ID: %s\n", info.ID)
	fmt.Fprintf(&b, "Slides: %d\n", info.SlideCount)
	return mcp.NewToolResultText(b.String()), nil
}

func handleListSlides(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, err := requiredPresentationID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slideInfos, err := client.ListSlides(presentationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list slides: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d slide(s):\n", len(slideInfos))
	for _, slide := range slideInfos {
		fmt.Fprintf(&b, "  %d. object %s\n", slide.Number, slide.ObjectID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetSlideText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, err := requiredPresentationID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slideNumber, ok := args["slideNumber"].(float64)
	if !ok || slideNumber < 1 {
		return mcp.NewToolResultError("slideNumber is required and must be at least 1"), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := client.GetSlideText(presentationID, int(slideNumber))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get slide text: %v", err)), nil
	}

	if strings.TrimSpace(text.Text) == "" {
		return mcp.NewToolResultText(fmt.Sprintf("Slide %d has no text content.", text.Number)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Slide %d:\n%s", text.Number, text.Text)), nil
}

// numberArg returns the named number argument, or fallback when absent.
func numberArg(args map[string]interface{}, name string, fallback float64) float64 {
	if v, ok := args[name].(float64); ok {
		return v
	}
	return fallback
}

func handleCreatePresentation(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	title := stringArg(args, "title")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.CreatePresentation(title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create presentation: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Presentation created: %s\n", info.Title)
	fmt.Fprintf(&b, "ID: %s\n", info.ID)
	fmt.Fprintf(&b, "URL: https://docs.google.com/presentation/d/%s/edit\n", info.ID)
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateSlide(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, err := requiredPresentationID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	layout := stringArg(args, "layout")
	if layout == "" {
		layout = "BLANK"
	}
	if !predefinedLayouts[layout] {
		return mcp.NewToolResultError(fmt.Sprintf("unknown layout %q", layout)), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	objectID, err := client.CreateSlide(presentationID, layout)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create slide: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Slide created with layout %s (object %s)", layout, objectID)), nil
}

func handleAddTextToSlide(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, err := requiredPresentationID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slideNumber, ok := args["slideNumber"].(float64)
	if !ok || slideNumber < 1 {
		return mcp.NewToolResultError("slideNumber is required and must be at least 1"), nil
	}
	text := stringArg(args, "text")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slideInfos, err := client.ListSlides(presentationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list slides: %v", err)), nil
	}
	if int(slideNumber) > len(slideInfos) {
		return mcp.NewToolResultError(fmt.Sprintf("slide %d out of range: presentation has %d slides", int(slideNumber), len(slideInfos))), nil
	}
	slideID := slideInfos[int(slideNumber)-1].ObjectID

	elementID, err := client.AddTextBox(presentationID, slideID, text,
		numberArg(args, "x", 100),
		numberArg(args, "y", 100),
		numberArg(args, "width", 400),
		numberArg(args, "height", 100),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add text box: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Text box %s added to slide %d (object %s)", elementID, int(slideNumber), slideID)), nil
}

func handleGetAllText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, err := requiredPresentationID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := client.GetAllText(presentationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get presentation text: %v", err)), nil
	}

	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultText("The presentation has no text content."), nil
	}
	return mcp.NewToolResultText(text), nil
}
