// Package privacy scrubs credentials from URLs and messages before they are
// logged or sent to a notification service.
package privacy

import (
	"net/url"
	"regexp"
	"strings"
)

// Redacted replaces a credential
const Redacted = "[REDACTED]"

// urlPattern finds URLs in free text; quotes end a URL as in Go's url.Error
var urlPattern = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9+.-]*://[^\s"'<>]+`)

// sensitiveParams are query parameters whose values are credentials
var sensitiveParams = map[string]bool{
	"key":          true,
	"api_key":      true,
	"apikey":       true,
	"token":        true,
	"access_token": true,
	"password":     true,
	"secret":       true,
}

// ScrubMessage scrubs every URL found in message.
func ScrubMessage(message string) string {
	return urlPattern.ReplaceAllStringFunc(message, ScrubURL)
}

// ScrubURL removes credentials from one URL. HTTP URLs keep host, path and
// the names of their query parameters; user info and sensitive values are
// redacted. Any other scheme, such as a notification service URL, carries
// credentials anywhere and is reduced to the scheme.
func ScrubURL(raw string) string {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return raw
	}
	prefix := raw[:i+3]
	switch strings.ToLower(raw[:i]) {
	case "http", "https":
	default:
		return prefix + Redacted
	}

	rest := raw[i+3:]
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	authority, tail := rest[:end], rest[end:]
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		authority = Redacted + "@" + authority[at+1:]
	}

	if q := strings.Index(tail, "?"); q >= 0 {
		query, fragment := tail[q+1:], ""
		if h := strings.Index(query, "#"); h >= 0 {
			query, fragment = query[:h], query[h:]
		}
		tail = tail[:q+1] + scrubQuery(query) + fragment
	}
	return prefix + authority + tail
}

func scrubQuery(query string) string {
	parts := strings.Split(query, "&")
	for i, p := range parts {
		k, _, found := strings.Cut(p, "=")
		name, err := url.QueryUnescape(k)
		if err != nil {
			name = k
		}
		if found && sensitiveParams[strings.ToLower(name)] {
			parts[i] = k + "=" + Redacted
		}
	}
	return strings.Join(parts, "&")
}
