package logger

import (
	"regexp"
)

// SensitiveDataPatterns match secrets that must never reach a log line. The
// first group is kept, the rest is replaced.
var SensitiveDataPatterns = []*regexp.Regexp{
	// Bearer tokens and JWTs (Firebase ID tokens)
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9-._~+/]+=*)`),
	regexp.MustCompile(`(eyJ[a-zA-Z0-9_-]{5,}\.eyJ[a-zA-Z0-9_-]{5,})\.[a-zA-Z0-9_-]{5,}`),

	// API keys in query strings, e.g. ?key=AIza...
	regexp.MustCompile(`(?i)([?&](?:key|api_key|access_token|token)=)([^&\s"]+)`),

	// Google API keys anywhere in text
	regexp.MustCompile(`()(AIza[0-9A-Za-z_\-]{35})`),

	// Secrets in key: value or key=value form
	regexp.MustCompile(`(?i)((?:api[_-]?key|secret|token|passw(?:or)?d)[\s:=]+)([^;,\s&"]{5,})`),
}

// RedactSensitiveData replaces sensitive information with "[REDACTED]"
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}
	for _, pattern := range SensitiveDataPatterns {
		input = pattern.ReplaceAllString(input, "${1}[REDACTED]")
	}
	return input
}
