package slides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	slides "google.golang.org/api/slides/v1"
)

func textContent(runs ...string) *slides.TextContent {
	tc := &slides.TextContent{}
	for _, run := range runs {
		tc.TextElements = append(tc.TextElements, &slides.TextElement{
			TextRun: &slides.TextRun{Content: run},
		})
	}
	return tc
}

func TestExtractTextContent(t *testing.T) {
	assert.Equal(t, "", extractTextContent(nil))
	assert.Equal(t, "Hello World", extractTextContent(textContent("Hello ", "World\n")))
}

func TestExtractPageText_Shapes(t *testing.T) {
	page := &slides.Page{
		PageElements: []*slides.PageElement{
			{Shape: &slides.Shape{Text: textContent("Title\n")}},
			{Shape: &slides.Shape{Text: textContent("Body text\n")}},
			{Shape: &slides.Shape{}}, // shape without text
		},
	}

	assert.Equal(t, "Title\nBody text", extractPageText(page))
}

func TestExtractPageText_Table(t *testing.T) {
	page := &slides.Page{
		PageElements: []*slides.PageElement{
			{Table: &slides.Table{
				TableRows: []*slides.TableRow{
					{TableCells: []*slides.TableCell{
						{Text: textContent("Name")},
						{Text: textContent("Age")},
					}},
					{TableCells: []*slides.TableCell{
						{Text: textContent("Alice")},
						{Text: textContent("30")},
					}},
				},
			}},
		},
	}

	assert.Equal(t, "Name | Age\nAlice | 30", extractPageText(page))
}

func TestExtractPageText_WordArtAndGroups(t *testing.T) {
	page := &slides.Page{
		PageElements: []*slides.PageElement{
			{WordArt: &slides.WordArt{RenderedText: "BIG"}},
			{ElementGroup: &slides.Group{
				Children: []*slides.PageElement{
					{Shape: &slides.Shape{Text: textContent("grouped\n")}},
				},
			}},
		},
	}

	assert.Equal(t, "BIG\ngrouped", extractPageText(page))
}

func TestExtractPageText_Empty(t *testing.T) {
	assert.Equal(t, "", extractPageText(nil))
	assert.Equal(t, "", extractPageText(&slides.Page{}))
}
