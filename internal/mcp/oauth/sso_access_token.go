package oauth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"

	"github.com/letterrip/workspace-mcp/internal/logging"
)

const (
	// SSOAccessTokenHeader is the HTTP header name for forwarded Google
	// access tokens. When an upstream aggregator authenticates the user,
	// it forwards the user's Google access token in this header alongside
	// the identity token in the Authorization header.
	SSOAccessTokenHeader = "X-Google-Access-Token"

	// SSORefreshTokenHeader is the optional HTTP header name for forwarded
	// Google refresh tokens. If provided, enables automatic token refresh
	// for long-running sessions.
	SSORefreshTokenHeader = "X-Google-Refresh-Token"

	// SSOTokenExpiryHeader is the optional HTTP header name for the access
	// token expiry time, in RFC3339 format. If not provided, a default
	// expiry of 1 hour is assumed.
	SSOTokenExpiryHeader = "X-Google-Token-Expiry"

	// defaultAccessTokenExpiry is assumed when no expiry header is present.
	// Google access tokens typically expire in 1 hour.
	defaultAccessTokenExpiry = 1 * time.Hour

	// tokenStoreTimeout bounds the time spent storing a forwarded token.
	tokenStoreTimeout = 5 * time.Second
)

// SSO token injection results, recorded as the "result" attribute of the
// sso_token_injections metric.
const (
	SSOInjectionResultSuccess     = "success"
	SSOInjectionResultNoUser      = "no_user"
	SSOInjectionResultNoToken     = "no_token"
	SSOInjectionResultStoreFailed = "store_failed"
)

// SSOMetricsRecorder records SSO token injection outcomes. It lets the
// middleware record metrics without depending on the full Metrics type.
type SSOMetricsRecorder interface {
	RecordSSOTokenInjection(ctx context.Context, result string)
}

// SSOMiddlewareConfig holds configuration for the SSO access token middleware.
type SSOMiddlewareConfig struct {
	// Store is the token store to save forwarded access tokens
	Store storage.TokenStore

	// Logger for audit and debug logging (optional, uses slog.Default if nil)
	Logger *slog.Logger

	// Metrics for recording SSO token injection metrics (optional)
	Metrics SSOMetricsRecorder
}

// SSOAccessTokenMiddleware creates middleware that extracts and stores
// forwarded Google access tokens. It should wrap handlers that are already
// protected by the OAuth validation middleware: the validated user's email
// is the key under which the forwarded token is stored, and the token is
// also injected into the request context for direct downstream use.
func SSOAccessTokenMiddleware(store storage.TokenStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return SSOAccessTokenMiddlewareWithConfig(&SSOMiddlewareConfig{
		Store:  store,
		Logger: logger,
	})
}

// SSOAccessTokenMiddlewareWithConfig creates the middleware with full
// configuration including metrics.
func SSOAccessTokenMiddlewareWithConfig(config *SSOMiddlewareConfig) func(http.Handler) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	recordMetric := func(ctx context.Context, result string) {
		if config.Metrics != nil {
			config.Metrics.RecordSSOTokenInjection(ctx, result)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// The OAuth middleware has already returned 401 if auth was
			// required, so an unauthenticated request just passes through.
			userInfo, ok := GetUserFromContext(ctx)
			if !ok || userInfo == nil || userInfo.Email == "" {
				recordMetric(ctx, SSOInjectionResultNoUser)
				next.ServeHTTP(w, r)
				return
			}

			accessToken := r.Header.Get(SSOAccessTokenHeader)
			if accessToken == "" {
				recordMetric(ctx, SSOInjectionResultNoToken)
				next.ServeHTTP(w, r)
				return
			}

			refreshToken := r.Header.Get(SSORefreshTokenHeader)
			expiry := parseTokenExpiry(r.Header.Get(SSOTokenExpiryHeader))

			token := &oauth2.Token{
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				TokenType:    "Bearer",
				Expiry:       expiry,
			}

			storeCtx, cancel := context.WithTimeout(ctx, tokenStoreTimeout)
			storeErr := config.Store.SaveToken(storeCtx, userInfo.Email, token)
			cancel()

			if storeErr != nil {
				logger.Error("Failed to store forwarded SSO access token",
					"user_hash", logging.AnonymizeEmail(userInfo.Email),
					"error", storeErr,
				)
				recordMetric(ctx, SSOInjectionResultStoreFailed)
				// The token can still be injected into context, so keep going.
			} else {
				logger.Info("Stored forwarded SSO access token",
					"user_hash", logging.AnonymizeEmail(userInfo.Email),
					"has_refresh_token", refreshToken != "",
					"expires_in", time.Until(expiry).Round(time.Second).String(),
				)
				recordMetric(ctx, SSOInjectionResultSuccess)
			}

			// Inject the access token into the request context so tools can
			// use it via GetGoogleAccessTokenFromContext without a store lookup.
			ctx = ContextWithGoogleAccessToken(ctx, accessToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseTokenExpiry parses the token expiry header value. Returns a default
// expiry of 1 hour from now if the value is empty or invalid.
func parseTokenExpiry(expiryStr string) time.Time {
	if expiryStr == "" {
		return time.Now().Add(defaultAccessTokenExpiry)
	}

	expiry, err := time.Parse(time.RFC3339, expiryStr)
	if err != nil {
		return time.Now().Add(defaultAccessTokenExpiry)
	}

	return expiry
}
