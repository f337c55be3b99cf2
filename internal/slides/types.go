package slides

// PresentationInfo describes a presentation and its slides.
type PresentationInfo struct {
	ID         string
	Title      string
	SlideCount int
}

// SlideInfo identifies a single slide. Number is 1-based, matching what a
// presenter sees.
type SlideInfo struct {
	Number   int
	ObjectID string
}

// SlideText is the extracted text of one slide.
type SlideText struct {
	Number   int
	ObjectID string
	Text     string
}
