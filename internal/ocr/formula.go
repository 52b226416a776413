package ocr

import (
	"strings"
	"unicode"
)

var mathSymbols = map[rune]bool{
	'=': true, '√': true, '∑': true, '∫': true, 'π': true, '×': true,
	'÷': true, '^': true, '_': true, '(': true, ')': true, '[': true,
	']': true, '{': true, '}': true, '+': true, '-': true, '/': true,
	'\\': true, '<': true, '>': true, '|': true, '∞': true, '≤': true,
	'≥': true, '≈': true, '·': true,
}

var mathKeywords = []string{
	"frac", "sqrt", "lim", "sum", "int",
	`\frac`, `\sqrt`, `\int`,
	"sigma", "beta", "alpha", "mu", "=",
}

// IsLikelyFormula guesses whether recognized text is a math snippet rather
// than prose, so callers can label it instead of feeding it to question
// synthesis as ordinary sentences.
func IsLikelyFormula(text string) bool {
	txt := strings.TrimSpace(text)
	if txt == "" {
		return false
	}

	runes := []rune(txt)
	symCount := 0
	alphaCount := 0
	for _, r := range runes {
		if mathSymbols[r] {
			symCount++
		}
		if unicode.IsLetter(r) {
			alphaCount++
		}
	}
	symRatio := float64(symCount) / float64(len(runes))
	alphaRatio := float64(alphaCount) / float64(len(runes))

	lower := strings.ToLower(txt)
	for _, kw := range mathKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if symRatio > 0.05 && alphaRatio < 0.9 {
		return true
	}
	if len(runes) < 200 && symCount >= 2 {
		return true
	}
	return false
}
