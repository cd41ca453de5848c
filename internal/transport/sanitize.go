package transport

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameter names redacted from logs, matched
// case-insensitively as substrings.
var sensitiveParams = []string{
	"signature",
	"secret",
	"api_key",
	"apikey",
}

// sanitizeURL redacts sensitive query parameters before a URL is logged.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}
	if u.RawQuery == "" {
		return u.String()
	}

	q := u.Query()
	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, "[REDACTED]")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
