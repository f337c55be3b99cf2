package gmail

import (
	"encoding/base64"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// headerValue extracts a header value from a Gmail message. Header names
// are matched case-insensitively per RFC 5322.
func headerValue(msg *gmail.Message, header string) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

// extractBody returns the decoded text body of a message payload. A
// text/plain part is preferred; text/html is the fallback for HTML-only
// mail.
func extractBody(payload *gmail.MessagePart) string {
	if body := findBody(payload, "text/plain"); body != "" {
		return body
	}
	return findBody(payload, "text/html")
}

func findBody(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, child := range part.Parts {
		if body := findBody(child, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// decodeBody decodes Gmail's base64url body data, falling back to standard
// base64 for the occasional non-conforming message.
func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

// buildDraftMIME assembles an RFC 2822 message and returns it base64url
// encoded, as the Gmail API expects for raw messages.
func buildDraftMIME(input DraftInput, inReplyTo, references string) string {
	var b strings.Builder

	b.WriteString("To: ")
	b.WriteString(strings.Join(input.To, ", "))
	b.WriteString("\r\n")

	if len(input.Cc) > 0 {
		b.WriteString("Cc: ")
		b.WriteString(strings.Join(input.Cc, ", "))
		b.WriteString("\r\n")
	}

	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(input.Subject))
	b.WriteString("\r\n")

	if inReplyTo != "" {
		b.WriteString("In-Reply-To: ")
		b.WriteString(inReplyTo)
		b.WriteString("\r\n")
	}
	if references != "" {
		b.WriteString("References: ")
		b.WriteString(references)
		b.WriteString("\r\n")
	}

	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(input.Body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

// encodeRFC2047 encodes a header value when it contains non-ASCII
// characters (umlauts and the like).
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}
