package oauth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/letterrip/workspace-mcp/internal/google"
)

// Handler validates Google OAuth tokens for the MCP HTTP transport and
// serves the protected-resource metadata that points clients at Google.
type Handler struct {
	config     *Config
	store      *Store
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHandler creates a new OAuth handler.
func NewHandler(config *Config) (*Handler, error) {
	if config.Resource == "" {
		return nil, fmt.Errorf("resource is required")
	}

	parsedURL, err := url.Parse(config.Resource)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URL: %w", err)
	}

	// Allow HTTP only for loopback addresses; require HTTPS everywhere else.
	if parsedURL.Scheme != "https" {
		hostname := parsedURL.Hostname()
		if hostname != "localhost" &&
			hostname != "127.0.0.1" &&
			hostname != "::1" &&
			hostname != "[::1]" {
			return nil, fmt.Errorf("resource must use HTTPS in production (got %s://)", parsedURL.Scheme)
		}
	}

	if len(config.SupportedScopes) == 0 {
		config.SupportedScopes = google.DefaultOAuthScopes
	}

	if config.CleanupInterval == 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := NewStoreWithInterval(config.CleanupInterval)
	store.SetLogger(logger)

	return &Handler{
		config:     config,
		store:      store,
		httpClient: config.HTTPClient,
		logger:     logger,
	}, nil
}

// GetStore returns the handler's token store.
func (h *Handler) GetStore() *Store {
	return h.store
}

// GetConfig returns the handler's configuration.
func (h *Handler) GetConfig() *Config {
	return h.config
}

// Shutdown stops the handler's background goroutines.
func (h *Handler) Shutdown() {
	h.store.Stop()
}

// ServeProtectedResourceMetadata serves the OAuth 2.0 Protected Resource
// Metadata document (RFC 9728) at /.well-known/oauth-protected-resource.
// It points clients at Google's authorization server.
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := map[string]interface{}{
		"resource":              h.config.Resource,
		"authorization_servers": []string{"https://accounts.google.com"},
		"scopes_supported":      h.config.SupportedScopes,
		"bearer_methods_supported": []string{
			"header",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.logger.Error("Failed to encode resource metadata", "error", err)
	}
}
