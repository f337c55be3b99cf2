package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// EnvClientID and EnvClientSecret configure the OAuth client used for
	// the local authorization flow.
	EnvClientID     = "GOOGLE_OAUTH_CLIENT_ID"
	EnvClientSecret = "GOOGLE_OAUTH_CLIENT_SECRET"

	// EnvCredentialsFile points at a client secret JSON file downloaded
	// from the Google Cloud console. Takes precedence over the ID/secret
	// variables when set.
	EnvCredentialsFile = "GOOGLE_OAUTH_CREDENTIALS"

	// EnvConfigDir overrides the directory where tokens are cached.
	EnvConfigDir = "WORKSPACE_MCP_CONFIG_DIR"

	cacheDirName = "workspace-mcp"

	// DefaultAccount is the account name used when a tool call does not
	// specify one.
	DefaultAccount = "default"
)

// ErrNoToken indicates that no cached OAuth token exists for an account.
// Callers should surface the authorization URL so the user can complete
// the flow.
var ErrNoToken = errors.New("no Google OAuth token found")

// GetOAuthConfig returns the OAuth2 configuration for all Google services.
// Credentials come from a client secret JSON file or from environment
// variables; the redirect is the out-of-band flow used by STDIO clients.
func GetOAuthConfig() (*oauth2.Config, error) {
	const oob = "urn:ietf:wg:oauth:2.0:oob"

	if credFile := os.Getenv(EnvCredentialsFile); credFile != "" {
		data, err := os.ReadFile(credFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read OAuth credentials file: %w", err)
		}
		conf, err := google.ConfigFromJSON(data, DefaultOAuthScopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse OAuth credentials file: %w", err)
		}
		if conf.RedirectURL == "" {
			conf.RedirectURL = oob
		}
		return conf, nil
	}

	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("Google OAuth client not configured: set %s or %s/%s", EnvCredentialsFile, EnvClientID, EnvClientSecret)
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  oob,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

// GetAuthURLForAccount returns the OAuth URL to authorize the given account.
func GetAuthURLForAccount(account string) (string, error) {
	conf, err := GetOAuthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(account, oauth2.AccessTypeOffline), nil
}

// SaveTokenForAccount exchanges an authorization code for tokens and caches
// them on disk under the account's token file.
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	conf, err := GetOAuthConfig()
	if err != nil {
		return err
	}

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return writeTokenFile(account, token)
}

// HasTokenForAccount reports whether a cached token exists for the account.
func HasTokenForAccount(account string) bool {
	_, err := os.Stat(tokenFilePath(account))
	return err == nil
}

// GetTokenSourceForAccount returns a refreshing token source backed by the
// account's cached token. Returns ErrNoToken when the account has never
// been authorized.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	conf, err := GetOAuthConfig()
	if err != nil {
		return nil, err
	}

	token, err := readTokenFile(account)
	if err != nil {
		return nil, err
	}

	return conf.TokenSource(ctx, token), nil
}

// GetHTTPClientForAccount returns an HTTP client that authenticates requests
// with the account's OAuth token. The client forces HTTP/1.1; the Google API
// endpoints occasionally reset HTTP/2 streams on long uploads.
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}
	return client, nil
}

// NewHTTPClientWithToken returns an HTTP client that authenticates requests
// with the given token, refreshing it through the configured OAuth client
// when it expires. Service clients use this when a TokenProvider has
// already resolved the account's token.
func NewHTTPClientWithToken(ctx context.Context, token *oauth2.Token) (*http.Client, error) {
	var ts oauth2.TokenSource
	if conf, err := GetOAuthConfig(); err == nil {
		ts = conf.TokenSource(ctx, token)
	} else {
		// No local OAuth client configured (HTTP transport with an
		// externally managed token). Use the token as-is; refresh is the
		// responsibility of whoever issued it.
		ts = oauth2.StaticTokenSource(token)
	}

	client := oauth2.NewClient(ctx, ts)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}
	return client, nil
}

// tokenFilePath returns the on-disk location of an account's cached token.
// The default account keeps the historical google.token name.
func tokenFilePath(account string) string {
	dir := os.Getenv(EnvConfigDir)
	if dir == "" {
		dir = filepath.Join(userCacheDir(), cacheDirName)
	}
	if account == "" || account == DefaultAccount {
		return filepath.Join(dir, "google.token")
	}
	return filepath.Join(dir, fmt.Sprintf("google-%s.token", sanitizeAccount(account)))
}

func sanitizeAccount(account string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '@', r == '-', r == '_':
			return r
		}
		return '_'
	}, account)
}

func readTokenFile(account string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("%w for account %q", ErrNoToken, account)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file for account %q: %w", account, err)
	}
	return &token, nil
}

func writeTokenFile(account string, token *oauth2.Token) error {
	path := tokenFilePath(account)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
