// Package oauth provides the OAuth resource-server pieces of the MCP
// HTTP transport: Bearer token validation against Google, an in-memory
// token store keyed by user email, SSO access-token forwarding, and
// token providers that bridge stored tokens to the Google API clients.
//
// The package validates tokens by calling Google's userinfo endpoint
// rather than running its own authorization server; clients obtain
// Google OAuth tokens out of band (or via an upstream aggregator that
// forwards them in the X-Google-Access-Token header).
package oauth
