package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/instrumentation"
	"github.com/letterrip/workspace-mcp/internal/mcp/oauth"
)

// ssoTokenStore is the subset of the memory token store the server needs:
// the storage interface plus its cleanup shutdown.
type ssoTokenStore interface {
	storage.TokenStore
	Stop()
}

// OAuthConfig holds the settings for the OAuth-enabled HTTP transport.
type OAuthConfig struct {
	// BaseURL is the public URL of this server, used as the OAuth
	// resource identifier (RFC 9728).
	BaseURL string

	// DisableStreaming disables streaming responses on the
	// streamable-http transport for clients that cannot handle them.
	DisableStreaming bool

	// DebugMode enables verbose request logging.
	DebugMode bool

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string
}

// CreateOAuthHandler builds the OAuth handler for the given configuration.
// The handler validates Google bearer tokens and serves protected-resource
// metadata pointing MCP clients at Google's authorization server.
func CreateOAuthHandler(config OAuthConfig) (*oauth.Handler, error) {
	return oauth.NewHandler(&oauth.Config{
		Resource: config.BaseURL,
	})
}

// OAuthHTTPServer wraps the MCP server's HTTP transports with Google
// bearer-token validation and SSO token forwarding. It serves RFC 9728
// Protected Resource Metadata so MCP clients can discover Google as the
// authorization server.
type OAuthHTTPServer struct {
	mcpServer        *mcpserver.MCPServer
	oauthHandler     *oauth.Handler
	ssoStore         ssoTokenStore
	sessions         *SessionIDManager
	httpServer       *http.Server
	serverType       string // "sse" or "streamable-http"
	disableStreaming bool
	tlsCertFile      string
	tlsKeyFile       string
	healthChecker    *HealthChecker
	metrics          *instrumentation.Metrics
}

// NewOAuthHTTPServer creates an OAuth-enabled HTTP server, building its
// own OAuth handler from the base URL.
func NewOAuthHTTPServer(mcpServer *mcpserver.MCPServer, serverType, baseURL string) (*OAuthHTTPServer, error) {
	handler, err := CreateOAuthHandler(OAuthConfig{BaseURL: baseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth handler: %w", err)
	}
	return NewOAuthHTTPServerWithHandler(mcpServer, serverType, handler, false)
}

// NewOAuthHTTPServerWithHandler creates an OAuth-enabled HTTP server
// around an existing OAuth handler.
func NewOAuthHTTPServerWithHandler(mcpServer *mcpserver.MCPServer, serverType string, handler *oauth.Handler, disableStreaming bool) (*OAuthHTTPServer, error) {
	return NewOAuthHTTPServerWithHandlerAndTLS(mcpServer, serverType, handler, disableStreaming, "", "")
}

// NewOAuthHTTPServerWithHandlerAndTLS creates an OAuth-enabled HTTP server
// with optional TLS. HTTPS is enabled when both certFile and keyFile are
// non-empty.
func NewOAuthHTTPServerWithHandlerAndTLS(mcpServer *mcpserver.MCPServer, serverType string, handler *oauth.Handler, disableStreaming bool, certFile, keyFile string) (*OAuthHTTPServer, error) {
	if handler == nil {
		return nil, fmt.Errorf("oauth handler is required")
	}
	if (certFile == "") != (keyFile == "") {
		return nil, fmt.Errorf("TLS requires both a certificate file and a key file")
	}

	return &OAuthHTTPServer{
		mcpServer:        mcpServer,
		oauthHandler:     handler,
		ssoStore:         memory.New(),
		sessions:         NewSessionIDManager(),
		serverType:       serverType,
		disableStreaming: disableStreaming,
		tlsCertFile:      certFile,
		tlsKeyFile:       keyFile,
	}, nil
}

// SetHealthChecker installs the health checker serving /healthz and
// /readyz on the main listener.
func (s *OAuthHTTPServer) SetHealthChecker(h *HealthChecker) {
	s.healthChecker = h
}

// SetMetrics enables HTTP request instrumentation and keeps the
// active-sessions gauge in step with the session manager.
func (s *OAuthHTTPServer) SetMetrics(m *instrumentation.Metrics) {
	s.metrics = m
	s.sessions.SetExpiryCallback(func(expired int) {
		for i := 0; i < expired; i++ {
			m.DecrementActiveSessions(context.Background())
		}
	})
}

// SessionManager returns the manager tracking client sessions by bearer
// credentials.
func (s *OAuthHTTPServer) SessionManager() *SessionIDManager {
	return s.sessions
}

// GetOAuthHandler returns the OAuth handler.
func (s *OAuthHTTPServer) GetOAuthHandler() *oauth.Handler {
	return s.oauthHandler
}

// SSOTokenStore returns the store holding tokens forwarded by trusted
// upstream clients via SSO headers.
func (s *OAuthHTTPServer) SSOTokenStore() storage.TokenStore {
	return s.ssoStore
}

// Start runs the HTTP server on addr, blocking until it stops.
func (s *OAuthHTTPServer) Start(addr string) error {
	baseURL := s.oauthHandler.GetConfig().Resource
	if err := validateHTTPSRequirement(baseURL); err != nil {
		return err
	}

	mux := http.NewServeMux()

	// Protected Resource Metadata (RFC 9728) tells MCP clients that
	// Google is the authorization server for this resource.
	mux.HandleFunc("/.well-known/oauth-protected-resource", s.oauthHandler.ServeProtectedResourceMetadata)

	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
	}

	ssoConfig := &oauth.SSOMiddlewareConfig{Store: s.ssoStore}
	if s.metrics != nil {
		ssoConfig.Metrics = s.metrics
	}
	ssoMiddleware := oauth.SSOAccessTokenMiddlewareWithConfig(ssoConfig)

	// Every MCP endpoint requires a valid Google bearer token. Session
	// tracking and SSO forwarding run after validation so the user
	// identity is known.
	protect := func(next http.Handler) http.Handler {
		return s.instrument(s.oauthHandler.ValidateGoogleToken(s.trackSession(ssoMiddleware(next))))
	}

	switch s.serverType {
	case "sse":
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)
		mux.Handle("/sse", protect(sseServer))
		mux.Handle("/message", protect(sseServer))

	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)
		mux.Handle("/mcp", protect(httpServer))

	default:
		return fmt.Errorf("unsupported server type: %s", s.serverType)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if s.tlsCertFile != "" && s.tlsKeyFile != "" {
		return s.httpServer.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server and stops the SSO token
// store's and session manager's cleanup loops.
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	s.ssoStore.Stop()
	s.sessions.Stop()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// trackSession derives a session from the request's bearer credentials
// and counts first-seen sessions in the active-sessions gauge.
func (s *OAuthHTTPServer) trackSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionID, err := s.sessions.ResolveSessionID(r); err == nil {
			account := google.DefaultAccount
			if userInfo, ok := oauth.GetUserFromContext(r.Context()); ok && userInfo.Email != "" {
				account = userInfo.Email
			}
			if s.sessions.Touch(sessionID, account) && s.metrics != nil {
				s.metrics.IncrementActiveSessions(r.Context())
			}
		}
		next.ServeHTTP(w, r)
	})
}

// instrument wraps next with HTTP request metrics when enabled.
func (s *OAuthHTTPServer) instrument(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

// statusWriter captures the response status code for instrumentation.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Flush lets streaming transports flush through the status wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// validateHTTPSRequirement enforces HTTPS for non-loopback resources.
// Plain HTTP is allowed only for localhost development.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("HTTPS is required for non-localhost deployments (got: %s)", baseURL)
		}
		return nil
	default:
		return fmt.Errorf("invalid URL scheme: %s (must be http for localhost or https)", u.Scheme)
	}
}
