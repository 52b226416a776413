package quizgen

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/quizway/quizway/internal/quiz"
)

// Fallback synthesizes fill-in-the-blank questions straight from the
// source text, with no network dependency. It is the terminal path of the
// generation state machine and never fails: given any text with at least
// one substantial sentence it returns at least one question.

const (
	minSentenceLen = 25
	blankToken     = "_____"
)

var sentenceSplitRe = regexp.MustCompile(`[.?!]\s+`)

// Fallback builds up to count questions from text. An empty slice means
// the text had no usable sentences.
func Fallback(text string, count int) []quiz.Question {
	if count <= 0 {
		return nil
	}

	questions := make([]quiz.Question, 0, count)
	for _, sentence := range splitSentences(text) {
		if len(questions) == count {
			break
		}
		word := longestAlphabeticWord(sentence)
		if word == "" {
			continue
		}
		stem := strings.Replace(sentence, word, blankToken, 1)
		options, answer := buildOptions(word)
		questions = append(questions, quiz.Question{
			ID:       uuid.NewString(),
			Question: "Fill in the blank: " + stem,
			Options:  options,
			Answer:   answer,
			Hint:     "The missing word has " + wordLengthHint(word),
		})
	}
	return questions
}

func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if len(p) >= minSentenceLen {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func longestAlphabeticWord(sentence string) string {
	best := ""
	for _, word := range strings.Fields(sentence) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if !isAlphabetic(word) {
			continue
		}
		if len(word) > len(best) {
			best = word
		}
	}
	if len(best) < 4 {
		return ""
	}
	return best
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// buildOptions places the answer word among three random distractor
// tokens and returns the shuffled options with the answer's index.
func buildOptions(answer string) ([]string, int) {
	options := []string{answer}
	for len(options) < optionCount {
		d := distractor(len(answer))
		if !containsFold(options, d) {
			options = append(options, d)
		}
	}
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	for i, opt := range options {
		if opt == answer {
			return options, i
		}
	}
	return options, 0
}

const distractorAlphabet = "abcdefghijklmnopqrstuvwxyz"

func distractor(length int) string {
	if length < 4 {
		length = 4
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = distractorAlphabet[rand.Intn(len(distractorAlphabet))]
	}
	return string(b)
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

func wordLengthHint(word string) string {
	return strconv.Itoa(len(word)) + " letters"
}
