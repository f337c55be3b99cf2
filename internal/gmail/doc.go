// Package gmail provides a client for the Gmail API focused on inbox
// triage: finding messages that have not been classified yet, applying and
// removing the classification labels, and drafting threaded replies.
//
// The classification taxonomy is fixed (see Category); the Gmail label for
// each category is created on demand. Label name matching is normalized
// because Gmail treats differing spellings of the same name as equivalent.
package gmail
