package google

// DefaultOAuthScopes are the Google OAuth scopes required for full MCP
// functionality. The same list is used for the local file-based flow and
// for the HTTP OAuth proxy so that a token obtained through either path
// works for every registered tool.
//
// The scopes provide access to:
//   - Gmail: read, modify labels, send
//   - Google Calendar: full access (events, free/busy)
//   - Google Sheets: full access
//   - Google Forms: create/update forms, read responses
//   - Google Slides: full access
//   - Google Drive: read-only (locating files referenced by other services)
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail scopes
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.labels",
	"https://www.googleapis.com/auth/gmail.send",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",

	// Google Sheets scope
	"https://www.googleapis.com/auth/spreadsheets",

	// Google Forms scopes
	"https://www.googleapis.com/auth/forms.body",
	"https://www.googleapis.com/auth/forms.responses.readonly",

	// Google Slides scope
	"https://www.googleapis.com/auth/presentations",

	// Google Drive scope
	"https://www.googleapis.com/auth/drive.readonly",
}
