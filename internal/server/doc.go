// Package server provides the shared runtime state and HTTP plumbing for
// the workspace-mcp server.
//
// ServerContext owns the per-account Google API clients (Calendar, Gmail,
// Sheets, Forms, Slides) and the token provider they authenticate with.
// Clients are created lazily on first use and cached until shutdown.
//
// For HTTP transports the package also provides:
//
//   - OAuthHTTPServer: wraps the MCP server with Google bearer-token
//     validation, SSO token forwarding, protected-resource metadata, and
//     health endpoints.
//   - MetricsServer: a dedicated Prometheus scrape endpoint, kept off the
//     main listener so operators can firewall it separately.
//   - SessionIDManager: tracks MCP session identifiers with periodic
//     expiry.
package server
