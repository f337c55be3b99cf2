package oauth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// roundTripperFunc lets tests serve canned userinfo responses without
// reaching Google.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func userinfoClient(status int, body string) *http.Client {
	return &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(bytes.NewReader([]byte(body))),
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Request:    r,
			}, nil
		}),
	}
}

func newTestHandler(t *testing.T, client *http.Client) *Handler {
	t.Helper()
	handler, err := NewHandler(&Config{
		Resource:   "https://mcp.example.com",
		HTTPClient: client,
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	t.Cleanup(handler.Shutdown)
	return handler
}

func TestHandler_ValidateGoogleToken_MissingHeader(t *testing.T) {
	handler := newTestHandler(t, nil)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ValidateGoogleToken(testHandler).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("ValidateGoogleToken() status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("ValidateGoogleToken() should set WWW-Authenticate header")
	}
}

func TestHandler_ValidateGoogleToken_InvalidFormat(t *testing.T) {
	handler := newTestHandler(t, nil)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	w := httptest.NewRecorder()

	handler.ValidateGoogleToken(testHandler).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("ValidateGoogleToken() status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHandler_ValidateGoogleToken_InvalidToken(t *testing.T) {
	handler := newTestHandler(t, userinfoClient(http.StatusUnauthorized, `{}`))

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()

	handler.ValidateGoogleToken(testHandler).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("ValidateGoogleToken() status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHandler_ValidateGoogleToken_Valid(t *testing.T) {
	handler := newTestHandler(t, userinfoClient(http.StatusOK,
		`{"sub":"123","email":"user@example.com","email_verified":true,"name":"Test User"}`))

	var gotUser *GoogleUserInfo
	var gotToken *oauth2.Token
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUserFromContext(r.Context())
		gotToken, _ = GetGoogleTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ValidateGoogleToken(testHandler).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ValidateGoogleToken() status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUser == nil || gotUser.Email != "user@example.com" {
		t.Errorf("GetUserFromContext() = %+v, want email user@example.com", gotUser)
	}
	if gotToken == nil || gotToken.AccessToken != "valid-token" {
		t.Errorf("GetGoogleTokenFromContext() = %+v, want access token valid-token", gotToken)
	}

	// The validated token is cached for the token provider.
	if _, err := handler.GetStore().GetGoogleToken("user@example.com"); err != nil {
		t.Errorf("GetGoogleToken() after validation error = %v, want nil", err)
	}
}

func TestHandler_ValidateGoogleToken_MissingEmail(t *testing.T) {
	handler := newTestHandler(t, userinfoClient(http.StatusOK, `{"sub":"123"}`))

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer token-without-email")
	w := httptest.NewRecorder()

	handler.ValidateGoogleToken(testHandler).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("ValidateGoogleToken() status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHandler_OptionalGoogleToken_NoToken(t *testing.T) {
	handler := newTestHandler(t, nil)

	var handlerCalled bool
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		if _, ok := GetUserFromContext(r.Context()); ok {
			t.Error("Context should not carry user info without a token")
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.OptionalGoogleToken(testHandler).ServeHTTP(w, req)

	if !handlerCalled {
		t.Error("OptionalGoogleToken() should call next handler when no token is present")
	}
}

func TestHandler_OptionalGoogleToken_InvalidFormat(t *testing.T) {
	handler := newTestHandler(t, nil)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "NotBearer token")
	w := httptest.NewRecorder()

	handler.OptionalGoogleToken(testHandler).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("OptionalGoogleToken() status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestGetUserFromContext(t *testing.T) {
	if _, ok := GetUserFromContext(context.Background()); ok {
		t.Error("GetUserFromContext() on empty context should return false")
	}

	ctx := ContextWithUserInfo(context.Background(), &GoogleUserInfo{Email: "user@example.com"})
	userInfo, ok := GetUserFromContext(ctx)
	if !ok || userInfo.Email != "user@example.com" {
		t.Errorf("GetUserFromContext() = %+v, %v", userInfo, ok)
	}
}

func TestGetGoogleAccessTokenFromContext(t *testing.T) {
	if _, ok := GetGoogleAccessTokenFromContext(context.Background()); ok {
		t.Error("GetGoogleAccessTokenFromContext() on empty context should return false")
	}

	ctx := ContextWithGoogleAccessToken(context.Background(), "forwarded")
	token, ok := GetGoogleAccessTokenFromContext(ctx)
	if !ok || token != "forwarded" {
		t.Errorf("GetGoogleAccessTokenFromContext() = %q, %v", token, ok)
	}
}

func TestGetActionableErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  string
		want string
	}{
		{"unauthorized", "userinfo request failed with status 401", "re-authenticate"},
		{"forbidden", "userinfo request failed with status 403", "scopes"},
		{"network", "dial tcp: connection refused", "network"},
		{"rate limit", "userinfo request failed with status 429", "rate limit"},
		{"server error", "userinfo request failed with status 503", "temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := getActionableErrorMessage(errors.New(tt.err))
			if !strings.Contains(strings.ToLower(msg), tt.want) {
				t.Errorf("getActionableErrorMessage(%q) = %q, want it to mention %q", tt.err, msg, tt.want)
			}
		})
	}
}

func TestNewHandler_Validation(t *testing.T) {
	if _, err := NewHandler(&Config{}); err == nil {
		t.Error("NewHandler() with empty resource should return error")
	}

	if _, err := NewHandler(&Config{Resource: "http://public.example.com"}); err == nil {
		t.Error("NewHandler() with plain HTTP on a public host should return error")
	}

	handler, err := NewHandler(&Config{Resource: "http://localhost:8080"})
	if err != nil {
		t.Fatalf("NewHandler() with localhost HTTP error = %v", err)
	}
	handler.Shutdown()
	if handler.GetConfig().CleanupInterval != time.Minute {
		t.Errorf("NewHandler() CleanupInterval = %v, want %v", handler.GetConfig().CleanupInterval, time.Minute)
	}
}

func TestHandler_ServeProtectedResourceMetadata(t *testing.T) {
	handler := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/oauth-protected-resource", nil)
	w := httptest.NewRecorder()

	handler.ServeProtectedResourceMetadata(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("ServeProtectedResourceMetadata() status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("ServeProtectedResourceMetadata() Content-Type = %q", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("https://accounts.google.com")) {
		t.Error("ServeProtectedResourceMetadata() should name Google as the authorization server")
	}

	post := httptest.NewRequest(http.MethodPost, "/.well-known/oauth-protected-resource", nil)
	w = httptest.NewRecorder()
	handler.ServeProtectedResourceMetadata(w, post)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("ServeProtectedResourceMetadata() POST status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
