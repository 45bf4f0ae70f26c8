package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL appends disable_prepared_binary_result=yes when the
// deployment asks for it and the DSN does not already set it. Some pooled
// setups reject binary results on prepared statements.
func normalizeDBURL(dbURL string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return dbURL
	}

	parsed, err := url.Parse(dbURL)
	if err != nil || parsed == nil {
		return dbURL
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") != "" {
		return dbURL
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// dbNameFromURL extracts the database name from either a postgres:// URL or
// a keyword=value DSN, for tagging database spans.
func dbNameFromURL(dbURL string) string {
	trimmed := strings.TrimSpace(dbURL)

	if parsed, err := url.Parse(trimmed); err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		value, ok := strings.CutPrefix(token, "dbname=")
		if !ok {
			continue
		}
		if name := strings.Trim(strings.TrimSpace(value), `"'`); name != "" {
			return name
		}
	}

	return ""
}
