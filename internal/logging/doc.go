// Package logging provides structured logging utilities for workspace-mcp.
//
// It centralizes attribute naming and PII handling so that every package
// logs through slog with the same vocabulary. User emails are hashed before
// logging to allow correlation without exposing addresses, and tokens are
// never logged directly.
//
// Typical usage:
//
//	logger := logging.WithOperation(slog.Default(), "calendar.find_free_slots")
//	logger.Info("slots computed",
//	    logging.Account(account),
//	    logging.Status(logging.StatusSuccess))
package logging
