package oauth

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Store manages Google OAuth tokens and user info in memory, keyed by
// user email. Tokens past their expiry are swept by a background
// goroutine; call Stop to end it.
type Store struct {
	mu              sync.RWMutex
	googleTokens    map[string]*oauth2.Token
	googleUserInfo  map[string]*GoogleUserInfo
	cleanupInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
	logger          *slog.Logger
}

// NewStore creates a new in-memory token store with the default cleanup interval.
func NewStore() *Store {
	return NewStoreWithInterval(DefaultCleanupInterval)
}

// NewStoreWithInterval creates a new in-memory token store with a custom
// cleanup interval.
func NewStoreWithInterval(cleanupInterval time.Duration) *Store {
	s := &Store{
		googleTokens:    make(map[string]*oauth2.Token),
		googleUserInfo:  make(map[string]*GoogleUserInfo),
		cleanupInterval: cleanupInterval,
		stopCh:          make(chan struct{}),
		logger:          slog.Default(),
	}

	go s.cleanupExpiredTokens()

	return s
}

// SetLogger sets a custom logger for the store.
func (s *Store) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// Stop ends the background cleanup goroutine. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// SaveGoogleToken saves a Google OAuth token for a user.
func (s *Store) SaveGoogleToken(email string, token *oauth2.Token) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.googleTokens[email] = token
	s.logger.Debug("Saved Google token", "email", email, "expiry", token.Expiry)
	return nil
}

// GetGoogleToken retrieves a Google OAuth token for a user.
// Returns an error if no token is stored or the stored token is expired.
func (s *Store) GetGoogleToken(email string) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.googleTokens[email]
	if !ok {
		return nil, fmt.Errorf("Google token not found for user: %s", email)
	}

	if !token.Expiry.IsZero() && token.Expiry.Before(time.Now()) {
		return nil, fmt.Errorf("Google token expired for user: %s", email)
	}

	return token, nil
}

// DeleteGoogleToken removes a user's Google token and user info.
func (s *Store) DeleteGoogleToken(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.googleTokens, email)
	delete(s.googleUserInfo, email)

	s.logger.Info("Deleted Google token", "email", email)
	return nil
}

// SaveGoogleUserInfo saves Google user info for a user.
func (s *Store) SaveGoogleUserInfo(email string, userInfo *GoogleUserInfo) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if userInfo == nil {
		return fmt.Errorf("userInfo cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.googleUserInfo[email] = userInfo
	return nil
}

// GetGoogleUserInfo retrieves Google user info for a user.
func (s *Store) GetGoogleUserInfo(email string) (*GoogleUserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userInfo, ok := s.googleUserInfo[email]
	if !ok {
		return nil, fmt.Errorf("user info not found for user: %s", email)
	}
	return userInfo, nil
}

// Stats returns counts of stored entries, for health reporting.
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		"google_tokens":    len(s.googleTokens),
		"google_user_info": len(s.googleUserInfo),
	}
}

// cleanupExpiredTokens periodically removes expired tokens from the store.
func (s *Store) cleanupExpiredTokens() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweepExpired()
		}
	}
}

func (s *Store) sweepExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for email, token := range s.googleTokens {
		if !token.Expiry.IsZero() && token.Expiry.Before(now) {
			delete(s.googleTokens, email)
			delete(s.googleUserInfo, email)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("Cleaned up expired Google tokens", "removed", removed)
	}
}
