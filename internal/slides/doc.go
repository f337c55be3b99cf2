// Package slides provides a read-only client for the Google Slides API.
//
// Beyond presentation metadata it extracts the text content of slides,
// collecting text runs from shapes, table cells and word art, which makes
// decks searchable and summarizable as plain text.
package slides
