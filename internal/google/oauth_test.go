package google

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenFilePath_DefaultAccount(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	assert.Equal(t, filepath.Join(dir, "google.token"), tokenFilePath(DefaultAccount))
	assert.Equal(t, filepath.Join(dir, "google.token"), tokenFilePath(""))
}

func TestTokenFilePath_NamedAccount(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	assert.Equal(t, filepath.Join(dir, "google-work@example.com.token"), tokenFilePath("work@example.com"))
}

func TestTokenFilePath_SanitizesAccountName(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	got := tokenFilePath("../evil/name")
	assert.Equal(t, filepath.Join(dir, "google-.._evil_name.token"), got)
}

func TestTokenFileRoundTrip(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	token := &oauth2.Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
	}
	require.NoError(t, writeTokenFile("work@example.com", token))

	assert.True(t, HasTokenForAccount("work@example.com"))
	assert.False(t, HasTokenForAccount("other@example.com"))

	got, err := readTokenFile("work@example.com")
	require.NoError(t, err)
	assert.Equal(t, "access-123", got.AccessToken)
	assert.Equal(t, "refresh-456", got.RefreshToken)
}

func TestReadTokenFile_MissingReturnsErrNoToken(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	_, err := readTokenFile("nobody@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestGetOAuthConfig_FromEnvironment(t *testing.T) {
	t.Setenv(EnvCredentialsFile, "")
	t.Setenv(EnvClientID, "client-id")
	t.Setenv(EnvClientSecret, "client-secret")

	conf, err := GetOAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "client-id", conf.ClientID)
	assert.Equal(t, DefaultOAuthScopes, conf.Scopes)
}

func TestGetOAuthConfig_Unconfigured(t *testing.T) {
	t.Setenv(EnvCredentialsFile, "")
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	_, err := GetOAuthConfig()
	assert.Error(t, err)
}

func TestFileTokenProvider_HasTokenForAccount(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	provider := NewFileTokenProvider()
	assert.False(t, provider.HasTokenForAccount(DefaultAccount))

	require.NoError(t, writeTokenFile(DefaultAccount, &oauth2.Token{AccessToken: "a"}))
	assert.True(t, provider.HasTokenForAccount(DefaultAccount))
}
