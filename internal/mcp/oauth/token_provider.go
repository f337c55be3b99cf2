package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"
)

// TokenProvider implements google.TokenProvider on top of the in-memory
// Store, so Google API clients can use tokens obtained through the MCP
// OAuth middleware.
type TokenProvider struct {
	store *Store
}

// NewTokenProvider creates a token provider backed by the given store.
func NewTokenProvider(store *Store) *TokenProvider {
	return &TokenProvider{
		store: store,
	}
}

// GetTokenForAccount retrieves a Google OAuth token from the store.
// If the context carries an authenticated user (set by the OAuth
// middleware), that user's token is preferred; otherwise the account
// name is used as the lookup key.
func (p *TokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if userInfo, ok := GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		token, err := p.store.GetGoogleToken(userInfo.Email)
		if err == nil {
			return token, nil
		}
	}

	token, err := p.store.GetGoogleToken(account)
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s. Please authenticate with Google through your MCP client", account)
	}
	return token, nil
}

// HasTokenForAccount checks if a token exists in the store for the account.
// Without a context it can only check by account name, which is fine because
// it is only used during server initialization.
func (p *TokenProvider) HasTokenForAccount(account string) bool {
	_, err := p.store.GetGoogleToken(account)
	return err == nil
}

// StorageTokenProvider implements google.TokenProvider on top of a
// storage.TokenStore from the mcp-oauth library, for deployments where
// tokens are forwarded by an upstream aggregator and persisted in the
// library's store.
type StorageTokenProvider struct {
	store storage.TokenStore
}

// NewStorageTokenProvider creates a token provider backed by a library store.
func NewStorageTokenProvider(store storage.TokenStore) *StorageTokenProvider {
	return &StorageTokenProvider{
		store: store,
	}
}

// GetTokenForAccount retrieves a token from the library store. A user in
// the context takes precedence over the account name.
func (p *StorageTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if userInfo, ok := GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		token, err := p.store.GetToken(ctx, userInfo.Email)
		if err == nil && token != nil {
			return token, nil
		}
	}

	token, err := p.store.GetToken(ctx, account)
	if err != nil || token == nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s. Please authenticate with Google through your MCP client", account)
	}
	return token, nil
}

// HasTokenForAccount checks if a token exists in the library store.
func (p *StorageTokenProvider) HasTokenForAccount(account string) bool {
	token, err := p.store.GetToken(context.Background(), account)
	return err == nil && token != nil
}
