// Package google provides OAuth2 authentication and token management for
// the Google Workspace APIs used by this server.
//
// Tokens are stored per account: file-based storage serves the STDIO
// transport, while the TokenProvider interface lets HTTP transports plug in
// an OAuth store instead. All Google API clients in this module obtain
// their credentials through this package.
package google
