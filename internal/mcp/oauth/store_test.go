package oauth

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestStore_SaveAndGetGoogleToken(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	token := &oauth2.Token{
		AccessToken: "access-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}

	if err := store.SaveGoogleToken("user@example.com", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}

	got, err := store.GetGoogleToken("user@example.com")
	if err != nil {
		t.Fatalf("GetGoogleToken() error = %v", err)
	}
	if got.AccessToken != "access-token" {
		t.Errorf("GetGoogleToken() AccessToken = %q, want %q", got.AccessToken, "access-token")
	}
}

func TestStore_SaveGoogleToken_Validation(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	if err := store.SaveGoogleToken("", &oauth2.Token{}); err == nil {
		t.Error("SaveGoogleToken() with empty email should return error")
	}
	if err := store.SaveGoogleToken("user@example.com", nil); err == nil {
		t.Error("SaveGoogleToken() with nil token should return error")
	}
}

func TestStore_GetGoogleToken_NotFound(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	if _, err := store.GetGoogleToken("missing@example.com"); err == nil {
		t.Error("GetGoogleToken() for unknown user should return error")
	}
}

func TestStore_GetGoogleToken_Expired(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	token := &oauth2.Token{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Minute),
	}
	if err := store.SaveGoogleToken("user@example.com", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}

	if _, err := store.GetGoogleToken("user@example.com"); err == nil {
		t.Error("GetGoogleToken() for expired token should return error")
	}
}

func TestStore_GetGoogleToken_NoExpiry(t *testing.T) {
	// Tokens without an expiry never expire.
	store := NewStore()
	defer store.Stop()

	token := &oauth2.Token{AccessToken: "static"}
	if err := store.SaveGoogleToken("user@example.com", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}

	if _, err := store.GetGoogleToken("user@example.com"); err != nil {
		t.Errorf("GetGoogleToken() error = %v, want nil", err)
	}
}

func TestStore_DeleteGoogleToken(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	token := &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}
	if err := store.SaveGoogleToken("user@example.com", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}
	if err := store.SaveGoogleUserInfo("user@example.com", &GoogleUserInfo{Email: "user@example.com"}); err != nil {
		t.Fatalf("SaveGoogleUserInfo() error = %v", err)
	}

	if err := store.DeleteGoogleToken("user@example.com"); err != nil {
		t.Fatalf("DeleteGoogleToken() error = %v", err)
	}

	if _, err := store.GetGoogleToken("user@example.com"); err == nil {
		t.Error("GetGoogleToken() after delete should return error")
	}
	if _, err := store.GetGoogleUserInfo("user@example.com"); err == nil {
		t.Error("GetGoogleUserInfo() after delete should return error")
	}
}

func TestStore_UserInfo(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	userInfo := &GoogleUserInfo{
		Email: "user@example.com",
		Name:  "Test User",
	}

	if err := store.SaveGoogleUserInfo("user@example.com", userInfo); err != nil {
		t.Fatalf("SaveGoogleUserInfo() error = %v", err)
	}

	got, err := store.GetGoogleUserInfo("user@example.com")
	if err != nil {
		t.Fatalf("GetGoogleUserInfo() error = %v", err)
	}
	if got.Name != "Test User" {
		t.Errorf("GetGoogleUserInfo() Name = %q, want %q", got.Name, "Test User")
	}

	if err := store.SaveGoogleUserInfo("", userInfo); err == nil {
		t.Error("SaveGoogleUserInfo() with empty email should return error")
	}
	if err := store.SaveGoogleUserInfo("user@example.com", nil); err == nil {
		t.Error("SaveGoogleUserInfo() with nil userInfo should return error")
	}
}

func TestStore_SweepExpired(t *testing.T) {
	store := NewStore()
	defer store.Stop()

	expired := &oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Hour)}
	fresh := &oauth2.Token{AccessToken: "new", Expiry: time.Now().Add(time.Hour)}

	if err := store.SaveGoogleToken("old@example.com", expired); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}
	if err := store.SaveGoogleToken("new@example.com", fresh); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}

	store.sweepExpired()

	stats := store.Stats()
	if stats["google_tokens"] != 1 {
		t.Errorf("Stats() google_tokens = %d, want 1", stats["google_tokens"])
	}
	if _, err := store.GetGoogleToken("new@example.com"); err != nil {
		t.Errorf("GetGoogleToken() for fresh token error = %v, want nil", err)
	}
}

func TestStore_StopIsIdempotent(t *testing.T) {
	store := NewStore()
	store.Stop()
	store.Stop()
}
