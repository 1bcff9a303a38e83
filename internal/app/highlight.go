package app

import (
	"strings"
	"unicode"
)

type excerptSegment struct {
	Text  string
	Match bool
}

// truncateExcerpt shortens an excerpt to limit runes plus an ellipsis.
// Truncation happens before highlighting so match spans are always
// computed against the text actually displayed.
func truncateExcerpt(content string, limit int) string {
	if limit <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}

// excerptSegments splits a truncated excerpt into plain and matching
// runs for display. Matching is a case-insensitive substring search;
// the underlying text is never mutated.
func excerptSegments(content, query string, limit int) []excerptSegment {
	content = truncateExcerpt(content, limit)
	query = strings.TrimSpace(query)
	if content == "" {
		return nil
	}
	if query == "" {
		return []excerptSegment{{Text: content}}
	}

	haystack := []rune(content)
	needle := []rune(query)
	var segments []excerptSegment
	start := 0
	for i := 0; i+len(needle) <= len(haystack); {
		if !runesEqualFold(haystack[i:i+len(needle)], needle) {
			i++
			continue
		}
		if i > start {
			segments = append(segments, excerptSegment{Text: string(haystack[start:i])})
		}
		segments = append(segments, excerptSegment{Text: string(haystack[i : i+len(needle)]), Match: true})
		i += len(needle)
		start = i
	}
	if start < len(haystack) {
		segments = append(segments, excerptSegment{Text: string(haystack[start:])})
	}
	if len(segments) == 0 {
		return []excerptSegment{{Text: content}}
	}
	return segments
}

func runesEqualFold(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if unicode.ToLower(a[i]) != unicode.ToLower(b[i]) {
			return false
		}
	}
	return true
}
