package oauth

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultCleanupInterval is how often the store sweeps expired tokens
// when no interval is configured.
const DefaultCleanupInterval = 1 * time.Minute

// Config holds the OAuth handler configuration.
type Config struct {
	// Resource is the MCP server resource identifier for RFC 8707.
	// This should be the base URL of the MCP server.
	Resource string

	// SupportedScopes are all available Google API scopes.
	// Defaults to google.DefaultOAuthScopes when empty.
	SupportedScopes []string

	// CleanupInterval is how often to cleanup expired tokens.
	// Default: 1 minute.
	CleanupInterval time.Duration

	// Logger for structured logging (optional, uses slog.Default if nil).
	Logger *slog.Logger

	// HTTPClient is a custom HTTP client for token validation requests.
	// If not provided, oauth2's default client is used.
	HTTPClient *http.Client
}
