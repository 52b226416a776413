package quizgen

import (
	"fmt"
	"strings"
)

// maxPromptChars bounds how much source text goes into a single prompt so
// we stay well inside provider context limits.
const maxPromptChars = 12000

const quizPrompt = `Create %d multiple-choice questions from the following text. Return a JSON array of questions. Each question object must have these fields:

- "question": the question text (string, non-empty)
- "options": exactly 4 distinct answer choices (list of strings)
- "answer": index of the correct option, 0-based (integer 0-3)
- "hint": a short hint that does not give away the answer (string, optional)
- "explanation": one sentence explaining why the answer is correct (string, optional)

Rules:
- Every question must be answerable from the text alone
- Wrong options must be plausible but clearly incorrect
- Do not repeat the same fact across questions
- Do not reference "the text", "the passage", or "the document" in question wording

Respond with ONLY the JSON array, no other text.`

const strictSuffix = `

IMPORTANT: the previous response was not valid JSON. Respond with a raw JSON array only. No markdown fences, no commentary, no trailing commas. "answer" must be an integer between 0 and 3.`

// BuildPrompt assembles the synthesis prompt for one text unit, truncating
// the source to the prompt-size bound.
func BuildPrompt(title, text string, count int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(quizPrompt, count))
	sb.WriteString("\n\n---\n")
	if title != "" {
		sb.WriteString(fmt.Sprintf("Topic: %q\n---\n", title))
	}
	sb.WriteString(truncateText(text, maxPromptChars))
	return sb.String()
}

// BuildStrictPrompt is the retry variant used after a failed parse.
func BuildStrictPrompt(title, text string, count int) string {
	return BuildPrompt(title, text, count) + strictSuffix
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	// Back up to a line boundary so we do not end mid-sentence.
	if idx := strings.LastIndexByte(cut, '\n'); idx > max/2 {
		cut = cut[:idx]
	}
	return cut
}
