package scraper

import "strings"

// NormalizeURL upgrades protocol-relative URLs (//host/path) to https and
// trims surrounding whitespace. Already-absolute URLs pass through unchanged,
// so the function is idempotent. Relative paths are left as extracted;
// absolutizing them against the page is the consumer's concern.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "//") {
		return "https:" + trimmed
	}
	return trimmed
}

// cleanText collapses runs of whitespace (including newlines from markup)
// into single spaces and trims the result.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitMeta splits an "author · publisher" combined node on the middle-dot
// separator some layouts use. Missing parts come back empty.
func splitMeta(meta string) (author, publisher string) {
	parts := strings.SplitN(meta, "·", 2)
	if len(parts) > 0 {
		author = cleanText(parts[0])
	}
	if len(parts) > 1 {
		publisher = cleanText(parts[1])
	}
	return author, publisher
}
