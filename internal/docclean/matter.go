package docclean

import (
	"regexp"
	"strings"

	"github.com/quizway/quizway/internal/quiz"
)

var (
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*[\.\):]?\s+\S`)

	startMarkers = []string{"chapter 1", "chapter one", "introduction", "foreword"}

	frontMatterWords = regexp.MustCompile(`(?i)\b(preface|dedication|copyright|contents|acknowledg\w*|isbn|all rights reserved|published by|table of contents)\b|about the author`)
	backMatterWords  = regexp.MustCompile(`(?i)^\s*(index|references|bibliography|glossary|appendix( [a-z0-9]+)?|notes)\s*$|about the author|author biograph`)

	bioLineRe = regexp.MustCompile(`(?i)about the author|author biograph|acknowledg(e?ments?)\b`)
)

// TrimMatter drops front matter (everything before the first body page) and
// back matter (everything after the last body page). When no boundary can
// be found the document is kept whole — keeping boilerplate is cheaper than
// losing content.
func TrimMatter(pages []quiz.Page) []quiz.Page {
	if len(pages) <= 1 {
		return pages
	}

	start := findBodyStart(pages)
	end := findBodyEnd(pages)
	if start < 0 {
		start = 0
	}
	if end < start {
		return pages
	}
	return pages[start : end+1]
}

// findBodyStart returns the index of the first body page: the first page
// carrying a start-of-body marker, or failing that the first page that does
// not look like front matter.
func findBodyStart(pages []quiz.Page) int {
	for i, p := range pages {
		// A table of contents is full of numbered lines; front-matter
		// keywords at the top of the page veto the marker.
		if hasStartMarker(p.Text) && !looksLikeFrontMatter(p.Text) {
			return i
		}
	}
	for i, p := range pages {
		if !looksLikeFrontMatter(p.Text) {
			return i
		}
	}
	return -1
}

// findBodyEnd scans backward for the last page that does not look like
// back matter. Returns the last index when every page matches, keeping the
// document whole.
func findBodyEnd(pages []quiz.Page) int {
	for i := len(pages) - 1; i >= 0; i-- {
		if !looksLikeBackMatter(pages[i].Text) {
			return i
		}
	}
	return len(pages) - 1
}

func hasStartMarker(text string) bool {
	for _, line := range nonBlankLines(text) {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		for _, m := range startMarkers {
			if strings.HasPrefix(trimmed, m) {
				return true
			}
		}
		if numberedHeadingRe.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// looksLikeFrontMatter checks the leading lines of a page for front-matter
// keywords. Only the top of the page counts: a body page may well mention
// "copyright" somewhere in prose.
func looksLikeFrontMatter(text string) bool {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return true
	}
	limit := 5
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if frontMatterWords.MatchString(line) {
			return true
		}
	}
	return false
}

func looksLikeBackMatter(text string) bool {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return true
	}
	limit := 3
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if backMatterWords.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// stripBioLines removes stray author-bio and acknowledgment lines that
// survive the page-level trim.
func stripBioLines(pages []quiz.Page) []quiz.Page {
	out := make([]quiz.Page, 0, len(pages))
	for _, p := range pages {
		var kept []string
		for _, line := range strings.Split(p.Text, "\n") {
			if bioLineRe.MatchString(line) && len(strings.TrimSpace(line)) <= 80 {
				continue
			}
			kept = append(kept, line)
		}
		out = append(out, quiz.Page{Number: p.Number, Text: strings.Join(kept, "\n")})
	}
	return out
}
