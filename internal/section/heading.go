package section

import (
	"regexp"
	"strings"
	"unicode"
)

// Heading detection thresholds.
const (
	maxAllCapsLen    = 120
	minAllCapsLen    = 3
	maxAllCapsWords  = 10
	maxTitleWords    = 8
	titleCaseRatio   = 0.6
	fullDocumentName = "Full Document"
)

var (
	numberedRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)[\.\):]?\s+(.+)$`)
	chapterRe  = regexp.MustCompile(`(?i)^chapter\s+([0-9]+|[ivxlcdm]+)\b\.?\s*(.*)$`)
)

// heading describes a detected heading line.
type heading struct {
	title string
	level int
}

// detectHeading classifies a line, first match wins: numbered heading,
// "Chapter N", all-caps, then a title-case heuristic. Returns nil for body
// text.
func detectHeading(line string) *heading {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if m := numberedRe.FindStringSubmatch(line); m != nil {
		level := strings.Count(m[1], ".") + 1
		return &heading{title: line, level: level}
	}
	if chapterRe.MatchString(line) {
		return &heading{title: line, level: 1}
	}
	if isAllCapsHeading(line) {
		return &heading{title: line, level: 1}
	}
	if isTitleCaseHeading(line) {
		return &heading{title: line, level: 2}
	}
	return nil
}

func isAllCapsHeading(line string) bool {
	if len(line) < minAllCapsLen || len(line) > maxAllCapsLen {
		return false
	}
	if len(strings.Fields(line)) > maxAllCapsWords {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// isTitleCaseHeading flags short lines where most words are capitalized.
// Sentences ending in punctuation are body text, not headings.
func isTitleCaseHeading(line string) bool {
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") ||
		strings.HasSuffix(line, ";") || strings.HasSuffix(line, ":") {
		return false
	}
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > maxTitleWords {
		return false
	}
	capped := 0
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsUpper(r) || unicode.IsDigit(r) {
			capped++
		}
	}
	return float64(capped)/float64(len(words)) >= titleCaseRatio
}
