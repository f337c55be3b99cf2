package common

import (
	"context"
	"testing"

	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/mcp/oauth"
)

func TestGetAccountFromArgs_Default(t *testing.T) {
	account := GetAccountFromArgs(context.Background(), map[string]interface{}{})
	if account != google.DefaultAccount {
		t.Errorf("account = %q, want %q", account, google.DefaultAccount)
	}
}

func TestGetAccountFromArgs_ExplicitArgument(t *testing.T) {
	args := map[string]interface{}{"account": "work"}
	if account := GetAccountFromArgs(context.Background(), args); account != "work" {
		t.Errorf("account = %q, want work", account)
	}
}

func TestGetAccountFromArgs_EmptyArgumentFallsBack(t *testing.T) {
	args := map[string]interface{}{"account": ""}
	if account := GetAccountFromArgs(context.Background(), args); account != google.DefaultAccount {
		t.Errorf("account = %q, want %q", account, google.DefaultAccount)
	}
}

func TestGetAccountFromArgs_NonStringArgument(t *testing.T) {
	args := map[string]interface{}{"account": 42}
	if account := GetAccountFromArgs(context.Background(), args); account != google.DefaultAccount {
		t.Errorf("account = %q, want %q", account, google.DefaultAccount)
	}
}

func TestGetAccountFromArgs_OAuthUserWins(t *testing.T) {
	ctx := oauth.ContextWithUserInfo(context.Background(), &oauth.GoogleUserInfo{
		Email: "alice@example.com",
	})
	args := map[string]interface{}{"account": "work"}
	if account := GetAccountFromArgs(ctx, args); account != "alice@example.com" {
		t.Errorf("account = %q, want alice@example.com", account)
	}
}

func TestGetAccountFromArgs_OAuthUserWithoutEmail(t *testing.T) {
	ctx := oauth.ContextWithUserInfo(context.Background(), &oauth.GoogleUserInfo{})
	args := map[string]interface{}{"account": "work"}
	if account := GetAccountFromArgs(ctx, args); account != "work" {
		t.Errorf("account = %q, want work", account)
	}
}
