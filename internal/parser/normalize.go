package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeText fixes common PDF extraction artifacts: stray control
// characters, non-breaking/zero-width spaces, double-encoded UTF-8
// (mojibake) and letter-by-letter spaced words.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\u00a0", " ") // non-breaking space
	s = strings.ReplaceAll(s, "\u200b", "")  // zero-width space
	s = strings.ReplaceAll(s, "\ufeff", "")  // BOM
	s = fixMojibake(s)
	s = stripControl(s)
	s = collapseLetterGaps(s)
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = newlineRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

var (
	spaceRunRe   = regexp.MustCompile(`[ \t]{2,}`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
)

// fixMojibake attempts to undo a UTF-8 stream that was mis-decoded as
// Latin-1 and re-encoded. Telltale signs are "Ã"/"Â" pairs or replacement
// characters; the candidate re-decode is kept only when it produces fewer
// replacement characters than the input.
func fixMojibake(s string) string {
	if !strings.ContainsRune(s, 'Ã') && !strings.ContainsRune(s, 'Â') &&
		!strings.ContainsRune(s, utf8.RuneError) {
		return s
	}
	raw := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x100 {
			raw = append(raw, byte(r))
		}
	}
	candidate := strings.ToValidUTF8(string(raw), "�")
	if strings.Count(candidate, "�") < strings.Count(s, "�") {
		s = candidate
	}
	return strings.ReplaceAll(s, "Â", "")
}

// stripControl drops replacement characters, C0/C1 controls (except
// newline and tab) and combining diacritics left behind by bad decodes.
func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == utf8.RuneError || unicode.IsControl(r):
			// drop
		case r >= 0x300 && r <= 0x36f:
			// drop stray combining marks
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collapseLetterGaps joins runs of three or more single-letter words,
// repairing text extracted as "W h a t" into "What". Runs are only joined
// within a line.
func collapseLetterGaps(s string) string {
	lines := strings.Split(s, "\n")
	for li, line := range lines {
		words := strings.Split(line, " ")
		var out []string
		i := 0
		for i < len(words) {
			j := i
			for j < len(words) && isSingleLetter(words[j]) {
				j++
			}
			if j-i >= 3 {
				out = append(out, strings.Join(words[i:j], ""))
				i = j
				continue
			}
			out = append(out, words[i])
			i++
		}
		lines[li] = strings.Join(out, " ")
	}
	return strings.Join(lines, "\n")
}

func isSingleLetter(w string) bool {
	if len(w) != 1 {
		return false
	}
	c := w[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
