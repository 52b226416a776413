package quizgen

import (
	"strings"
	"testing"
)

func TestFallbackBlanksLongestWord(t *testing.T) {
	text := "LESSON - 1\nPhotosynthesis is how plants convert light into energy. Chlorophyll absorbs light."

	questions := Fallback(text, 3)
	if len(questions) == 0 {
		t.Fatal("expected at least one question")
	}

	q := questions[0]
	if strings.Count(q.Question, blankToken) != 1 {
		t.Errorf("expected exactly one blank in stem: %q", q.Question)
	}
	if !strings.Contains(q.Question, "plants convert light") {
		t.Errorf("stem should come from the source sentence: %q", q.Question)
	}
	if len(q.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(q.Options))
	}
	if !containsFold(q.Options, "Photosynthesis") {
		t.Errorf("options should include the blanked word: %v", q.Options)
	}
	if q.Answer < 0 || q.Answer > 3 {
		t.Fatalf("answer index out of range: %d", q.Answer)
	}
	if !strings.EqualFold(q.Options[q.Answer], "Photosynthesis") {
		t.Errorf("answer index %d points at %q, want the blanked word", q.Answer, q.Options[q.Answer])
	}
}

func TestFallbackDistinctOptions(t *testing.T) {
	text := "The mitochondria is the powerhouse of the cell. Ribosomes assemble proteins from amino acids."
	for _, q := range Fallback(text, 5) {
		seen := make(map[string]bool)
		for _, opt := range q.Options {
			key := strings.ToLower(opt)
			if seen[key] {
				t.Errorf("duplicate option %q in %v", opt, q.Options)
			}
			seen[key] = true
		}
	}
}

func TestFallbackRespectsCount(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy sleeping dog. ", 20)
	questions := Fallback(text, 3)
	if len(questions) != 3 {
		t.Errorf("expected 3 questions, got %d", len(questions))
	}
}

func TestFallbackShortText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"only short sentences", "Hi. Ok. Yes. No."},
		{"numbers only", "1234 5678 9012 3456 7890 1234 5678 9012."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fallback(tt.text, 3); len(got) != 0 {
				t.Errorf("expected no questions, got %d", len(got))
			}
		})
	}
}

func TestFallbackZeroCount(t *testing.T) {
	if got := Fallback("A perfectly reasonable sentence about chemistry reactions.", 0); got != nil {
		t.Errorf("expected nil for zero count, got %v", got)
	}
}
