// Package docclean strips repeating headers/footers and front/back matter
// from extracted document pages before sectioning. The heuristics are
// deliberately permissive: when in doubt, content is kept.
package docclean

import (
	"regexp"
	"strings"

	"github.com/quizway/quizway/internal/quiz"
)

// Config holds the tunable thresholds of the noise heuristics.
type Config struct {
	SamplePages       int     // pages inspected for header/footer candidates
	EdgeLines         int     // lines taken from each page edge as candidates
	MinRecurrence     float64 // fraction of sampled pages a candidate must appear on
	MaxBoilerplateLen int     // longest line still considered boilerplate
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		SamplePages:       8,
		EdgeLines:         2,
		MinRecurrence:     0.5,
		MaxBoilerplateLen: 120,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SamplePages <= 0 {
		c.SamplePages = d.SamplePages
	}
	if c.EdgeLines <= 0 {
		c.EdgeLines = d.EdgeLines
	}
	if c.MinRecurrence <= 0 {
		c.MinRecurrence = d.MinRecurrence
	}
	if c.MaxBoilerplateLen <= 0 {
		c.MaxBoilerplateLen = d.MaxBoilerplateLen
	}
	return c
}

// Clean runs the full noise pass: header/footer stripping, front/back
// matter trimming and mid-body bio line removal.
func Clean(pages []quiz.Page, cfg Config) []quiz.Page {
	cfg = cfg.withDefaults()
	pages = StripBoilerplate(pages, cfg)
	pages = TrimMatter(pages)
	return stripBioLines(pages)
}

// StripBoilerplate removes recurring header and footer lines from every
// page. Output has the same cardinality as the input and the pass is
// idempotent: stripped pages produce no further candidates.
func StripBoilerplate(pages []quiz.Page, cfg Config) []quiz.Page {
	cfg = cfg.withDefaults()
	headers, footers := detectBoilerplate(pages, cfg)
	if len(headers) == 0 && len(footers) == 0 {
		return pages
	}

	out := make([]quiz.Page, 0, len(pages))
	for _, p := range pages {
		lines := strings.Split(p.Text, "\n")
		lines = dropEdgeMatches(lines, headers, cfg.EdgeLines, false)
		lines = dropEdgeMatches(lines, footers, cfg.EdgeLines, true)
		out = append(out, quiz.Page{Number: p.Number, Text: strings.Join(lines, "\n")})
	}
	return out
}

// detectBoilerplate samples page edges and promotes lines that both recur
// and look like boilerplate. Keys are digit-insensitive so varying page
// numbers ("Page 3" vs "Page 7") count as one candidate.
func detectBoilerplate(pages []quiz.Page, cfg Config) (headers, footers map[string]bool) {
	sample := pages
	if len(sample) > cfg.SamplePages {
		sample = sample[:cfg.SamplePages]
	}
	if len(sample) < 2 {
		return nil, nil
	}

	headCount := map[string]int{}
	footCount := map[string]int{}
	for _, p := range sample {
		lines := nonBlankLines(p.Text)
		for i, line := range lines {
			if i < cfg.EdgeLines {
				headCount[boilerplateKey(line)]++
			}
			if i >= len(lines)-cfg.EdgeLines {
				footCount[boilerplateKey(line)]++
			}
		}
	}

	need := int(float64(len(sample))*cfg.MinRecurrence + 0.5)
	if need < 2 {
		need = 2
	}
	headers = map[string]bool{}
	footers = map[string]bool{}
	for key, n := range headCount {
		if n >= need && likelyBoilerplate(key, cfg) {
			headers[key] = true
		}
	}
	for key, n := range footCount {
		if n >= need && likelyBoilerplate(key, cfg) {
			footers[key] = true
		}
	}
	return headers, footers
}

var (
	digitRunRe       = regexp.MustCompile(`\d+`)
	endsInDigitsRe   = regexp.MustCompile(`#\s*$`)
	boilerplateWords = regexp.MustCompile(`(?i)\b(page|chapter|contents|press|publish\w*|edition|copyright|confidential|inc|ltd|vol\w*)\b|©`)
)

// boilerplateKey canonicalizes a line for frequency counting: lowercased,
// trimmed, digit runs replaced with '#'.
func boilerplateKey(line string) string {
	line = strings.ToLower(strings.TrimSpace(line))
	return digitRunRe.ReplaceAllString(line, "#")
}

func likelyBoilerplate(key string, cfg Config) bool {
	if key == "" || len(key) > cfg.MaxBoilerplateLen {
		return false
	}
	if boilerplateWords.MatchString(key) {
		return true
	}
	if endsInDigitsRe.MatchString(key) { // probable page number
		return true
	}
	// Very short recurring edge lines are page furniture even without
	// recognizable words.
	return len(key) <= 48
}

// dropEdgeMatches removes up to maxLines matching lines from the start
// (or end, when fromEnd) of a page. Blank lines at the edge are skipped
// over and cleaned up alongside.
func dropEdgeMatches(lines []string, matches map[string]bool, maxLines int, fromEnd bool) []string {
	if len(matches) == 0 {
		return lines
	}
	removed := 0
	for removed < maxLines {
		idx := -1
		if fromEnd {
			for i := len(lines) - 1; i >= 0; i-- {
				if strings.TrimSpace(lines[i]) != "" {
					idx = i
					break
				}
			}
		} else {
			for i := range lines {
				if strings.TrimSpace(lines[i]) != "" {
					idx = i
					break
				}
			}
		}
		if idx < 0 || !matches[boilerplateKey(lines[idx])] {
			break
		}
		lines = append(lines[:idx], lines[idx+1:]...)
		removed++
	}
	return lines
}

func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
