package gmail

import (
	"fmt"
	"strings"
)

// Category is one of the fixed inbox classification categories. Each
// category corresponds to a user-visible Gmail label.
type Category string

const (
	// CategoryFYI marks mail that needs no action beyond reading.
	CategoryFYI Category = "fyi"

	// CategoryRespond marks mail the user must answer personally.
	CategoryRespond Category = "respond"

	// CategoryDraft marks mail for which a reply draft should be written.
	CategoryDraft Category = "draft"

	// CategoryArchive marks mail that can be archived unread.
	CategoryArchive Category = "archive"

	// CategoryNeedsReview marks mail the classifier could not place.
	CategoryNeedsReview Category = "needs_review"
)

// labelNames maps each category to its Gmail label name.
var labelNames = map[Category]string{
	CategoryFYI:         "FYI",
	CategoryRespond:     "Respond",
	CategoryDraft:       "Write-Reply",
	CategoryArchive:     "To-Archive",
	CategoryNeedsReview: "Needs-Review",
}

// Categories returns all classification categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryFYI,
		CategoryRespond,
		CategoryDraft,
		CategoryArchive,
		CategoryNeedsReview,
	}
}

// LabelName returns the Gmail label name for a category.
func (c Category) LabelName() string {
	return labelNames[c]
}

// Valid reports whether the category is part of the taxonomy.
func (c Category) Valid() bool {
	_, ok := labelNames[c]
	return ok
}

// ParseCategory maps any reasonable spelling of a category or its label
// name to the canonical Category. "Write-Reply", "write reply" and "draft"
// all resolve to CategoryDraft.
func ParseCategory(s string) (Category, error) {
	key := normalizeLabelName(s)

	if c := Category(key); c.Valid() {
		return c, nil
	}
	for category, name := range labelNames {
		if normalizeLabelName(name) == key {
			return category, nil
		}
	}

	// Common aliases seen in practice.
	switch key {
	case "write_reply", "reply":
		return CategoryDraft, nil
	case "to_archive":
		return CategoryArchive, nil
	case "needs_review", "review":
		return CategoryNeedsReview, nil
	}

	return "", fmt.Errorf("unknown category %q (expected one of fyi, respond, draft, archive, needs_review)", s)
}

// normalizeLabelName lowercases a label name and folds spaces and hyphens
// into underscores. Gmail compares label names loosely, so we must too.
func normalizeLabelName(name string) string {
	folded := strings.ToLower(strings.TrimSpace(name))
	folded = strings.ReplaceAll(folded, " ", "_")
	folded = strings.ReplaceAll(folded, "-", "_")
	return folded
}
