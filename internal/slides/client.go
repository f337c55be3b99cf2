package slides

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	slides "google.golang.org/api/slides/v1"

	"github.com/letterrip/workspace-mcp/internal/google"
)

// Client wraps the Google Slides service for a single account.
type Client struct {
	svc           *slides.Service
	account       string
	tokenProvider google.TokenProvider
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccountWithProvider creates a new Slides client authenticated
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

	svc, err := slides.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Slides service: %w", err)
	}

	return &Client{
		svc:           svc,
		account:       account,
		tokenProvider: tokenProvider,
	}, nil
}

// NewClientForAccount creates a new Slides client using the default
// file-based token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClient creates a new Slides client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, google.DefaultAccount)
}

// CreatePresentation creates a new, empty presentation with the given
// title.
func (c *Client) CreatePresentation(title string) (*PresentationInfo, error) {
	pres, err := c.svc.Presentations.Create(&slides.Presentation{Title: title}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation: %w", err)
	}

	return &PresentationInfo{
		ID:         pres.PresentationId,
		Title:      pres.Title,
		SlideCount: len(pres.Slides),
	}, nil
}

// CreateSlide appends a slide using the given predefined layout and
// returns its object ID.
func (c *Client) CreateSlide(presentationID, layout string) (string, error) {
	resp, err := c.svc.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{
		Requests: []*slides.Request{{
			CreateSlide: &slides.CreateSlideRequest{
				SlideLayoutReference: &slides.LayoutReference{PredefinedLayout: layout},
			},
		}},
	}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create slide in %s: %w", presentationID, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].CreateSlide == nil {
		return "", fmt.Errorf("create slide in %s returned no object ID", presentationID)
	}
	return resp.Replies[0].CreateSlide.ObjectId, nil
}

// AddTextBox places a text box on a slide at the given position and size
// (in points) and fills it with text. Returns the new element's object ID.
// The shape and the text insert run as separate batch updates because the
// API assigns the element ID in the first reply.
func (c *Client) AddTextBox(presentationID, slideID, text string, x, y, width, height float64) (string, error) {
	createResp, err := c.svc.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{
		Requests: []*slides.Request{{
			CreateShape: &slides.CreateShapeRequest{
				ShapeType: "TEXT_BOX",
				ElementProperties: &slides.PageElementProperties{
					PageObjectId: slideID,
					Size: &slides.Size{
						Width:  &slides.Dimension{Magnitude: width, Unit: "PT"},
						Height: &slides.Dimension{Magnitude: height, Unit: "PT"},
					},
					Transform: &slides.AffineTransform{
						ScaleX:     1,
						ScaleY:     1,
						TranslateX: x,
						TranslateY: y,
						Unit:       "PT",
					},
				},
			},
		}},
	}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create text box on slide %s: %w", slideID, err)
	}
	if len(createResp.Replies) == 0 || createResp.Replies[0].CreateShape == nil {
		return "", fmt.Errorf("create text box on slide %s returned no object ID", slideID)
	}
	elementID := createResp.Replies[0].CreateShape.ObjectId

	_, err = c.svc.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{
		Requests: []*slides.Request{{
			InsertText: &slides.InsertTextRequest{ObjectId: elementID, Text: text},
		}},
	}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert text into element %s: %w", elementID, err)
	}
	return elementID, nil
}

// GetPresentation retrieves presentation metadata.
func (c *Client) GetPresentation(presentationID string) (*PresentationInfo, error) {
	pres, err := c.svc.Presentations.Get(presentationID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", presentationID, err)
	}

	return &PresentationInfo{
		ID:         pres.PresentationId,
		Title:      pres.Title,
		SlideCount: len(pres.Slides),
	}, nil
}

// ListSlides lists the slides of a presentation in presentation order.
func (c *Client) ListSlides(presentationID string) ([]SlideInfo, error) {
	pres, err := c.svc.Presentations.Get(presentationID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", presentationID, err)
	}

	infos := make([]SlideInfo, 0, len(pres.Slides))
	for i, slide := range pres.Slides {
		infos = append(infos, SlideInfo{Number: i + 1, ObjectID: slide.ObjectId})
	}
	return infos, nil
}

// GetSlideText extracts the text content of a single slide identified by
// its 1-based number.
func (c *Client) GetSlideText(presentationID string, slideNumber int) (*SlideText, error) {
	pres, err := c.svc.Presentations.Get(presentationID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", presentationID, err)
	}

	if slideNumber < 1 || slideNumber > len(pres.Slides) {
		return nil, fmt.Errorf("slide %d out of range: presentation has %d slides", slideNumber, len(pres.Slides))
	}

	slide := pres.Slides[slideNumber-1]
	return &SlideText{
		Number:   slideNumber,
		ObjectID: slide.ObjectId,
		Text:     extractPageText(slide),
	}, nil
}

// GetPresentationText extracts the text of every slide.
func (c *Client) GetPresentationText(presentationID string) ([]SlideText, error) {
	pres, err := c.svc.Presentations.Get(presentationID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", presentationID, err)
	}

	texts := make([]SlideText, 0, len(pres.Slides))
	for i, slide := range pres.Slides {
		texts = append(texts, SlideText{
			Number:   i + 1,
			ObjectID: slide.ObjectId,
			Text:     extractPageText(slide),
		})
	}
	return texts, nil
}

// GetAllText concatenates the text of all slides, separated by slide
// markers. Slides without text are skipped.
func (c *Client) GetAllText(presentationID string) (string, error) {
	texts, err := c.GetPresentationText(presentationID)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, st := range texts {
		if st.Text != "" {
			parts = append(parts, fmt.Sprintf("--- Slide %d ---\n%s", st.Number, st.Text))
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// extractPageText collects all text on a page: shape text runs, table
// cells and word art, in element order.
func extractPageText(page *slides.Page) string {
	if page == nil {
		return ""
	}

	var parts []string
	for _, element := range page.PageElements {
		collectElementText(element, &parts)
	}
	return strings.Join(parts, "\n")
}

func collectElementText(element *slides.PageElement, parts *[]string) {
	if element == nil {
		return
	}

	switch {
	case element.Shape != nil:
		if text := extractTextContent(element.Shape.Text); text != "" {
			*parts = append(*parts, text)
		}

	case element.Table != nil:
		for _, row := range element.Table.TableRows {
			var cells []string
			for _, cell := range row.TableCells {
				if text := extractTextContent(cell.Text); text != "" {
					cells = append(cells, text)
				}
			}
			if len(cells) > 0 {
				*parts = append(*parts, strings.Join(cells, " | "))
			}
		}

	case element.WordArt != nil:
		if element.WordArt.RenderedText != "" {
			*parts = append(*parts, element.WordArt.RenderedText)
		}

	case element.ElementGroup != nil:
		for _, child := range element.ElementGroup.Children {
			collectElementText(child, parts)
		}
	}
}

// extractTextContent joins the text runs of a text body, trimming the
// trailing newline the API appends to each paragraph.
func extractTextContent(text *slides.TextContent) string {
	if text == nil {
		return ""
	}

	var b strings.Builder
	for _, element := range text.TextElements {
		if element.TextRun != nil {
			b.WriteString(element.TextRun.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
