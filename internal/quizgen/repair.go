package quizgen

import (
	"regexp"
	"strings"
)

// Models wrap JSON in markdown fences, prose, or emit almost-JSON with
// trailing commas and stray control characters. ExtractJSON runs a staged
// recovery: fenced-block extraction, then a balanced-bracket scan, then
// sanitization. Each stage is independent so a failure in one does not
// poison the next.

var fenceRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ExtractJSON pulls the most plausible JSON value out of raw model output
// and repairs common syntax defects. It returns "" when no JSON-like
// content is present at all.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if m := fenceRe.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	s = balancedSlice(s)
	if s == "" {
		return ""
	}
	return sanitize(s)
}

// balancedSlice returns the substring from the first opening bracket to
// its matching close, tracking string literals so brackets inside quoted
// text do not confuse the scan. If the value is truncated, everything from
// the opening bracket onward is returned; truncated output still fails
// the parse, which is the right signal for the retry path.
func balancedSlice(s string) string {
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return ""
	}
	open := s[start]
	var close byte = ']'
	if open == '{' {
		close = '}'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

var trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

// sanitize fixes defects that are unambiguous to repair: trailing commas
// before closing brackets, raw control characters, and single-quoted
// strings where the value clearly uses no double quotes.
func sanitize(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = stripControls(s)
	if !strings.Contains(s, `"`) && strings.Contains(s, "'") {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return s
}

func stripControls(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			// Raw newlines and tabs inside string literals are the
			// common defect; escape them instead of dropping content.
			switch r {
			case '\n':
				sb.WriteString(`\n`)
				continue
			case '\t':
				sb.WriteString(`\t`)
				continue
			}
			if r < 0x20 {
				continue
			}
			sb.WriteRune(r)
			continue
		}
		if r == '"' {
			inString = true
		}
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
