package gmail

import (
	"time"
)

// Email is a simplified view of a Gmail message.
type Email struct {
	ID       string
	ThreadID string
	Subject  string
	From     string
	To       string
	Date     time.Time
	Snippet  string
	Body     string
	Labels   []string
}

// UnprocessedQuery filters the inbox search for messages that carry none of
// the classification labels yet. Zero values disable the corresponding
// filter.
type UnprocessedQuery struct {
	// NewerThanDays restricts results to mail received in the last N days.
	NewerThanDays int

	// Domain restricts results to senders from the given domain.
	Domain string

	// Sender restricts results to a specific sender address.
	Sender string

	// After and Before restrict by date (Gmail query syntax YYYY/MM/DD).
	After  string
	Before string

	// MaxResults caps the number of returned messages; 0 means the
	// defaultMaxResults.
	MaxResults int64
}

// DraftInput describes a reply draft to create. When ThreadID is set the
// draft is threaded into the existing conversation and the In-Reply-To and
// References headers are derived from ReplyToMessageID.
type DraftInput struct {
	To      []string
	Cc      []string
	Subject string
	Body    string

	ThreadID         string
	ReplyToMessageID string
}

// LabelInfo identifies a Gmail label. Type is "system" or "user" as
// reported by the API.
type LabelInfo struct {
	ID   string
	Name string
	Type string
}

// Profile is the Gmail account profile.
type Profile struct {
	EmailAddress  string
	MessagesTotal int64
	ThreadsTotal  int64
	HistoryID     uint64
}

// DraftSummary is a simplified view of a Gmail draft for listing.
type DraftSummary struct {
	ID      string
	Subject string
	To      string
	Snippet string
}
