// Package forms provides a read-only client for the Google Forms API.
//
// It exposes form structure (questions with parsed types and options),
// paginated response listing, a tabular view of responses keyed by question
// title, and summary statistics with answer distributions for choice-based
// questions.
package forms
