package quizgen

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/quizway/quizway/internal/quiz"
)

const optionCount = 4

// rawQuestion accepts the answer-key spellings models actually emit. The
// canonical form downstream is Question.Answer, 0-based; conversion from
// 1-based "correct" happens here and nowhere else.
type rawQuestion struct {
	Question     string          `json:"question"`
	Options      []string        `json:"options"`
	Answer       json.RawMessage `json:"answer"`
	CorrectIndex json.RawMessage `json:"correctIndex"`
	CorrectIdx   json.RawMessage `json:"correct_index"`
	Correct      json.RawMessage `json:"correct"`
	Hint         string          `json:"hint"`
	Explanation  string          `json:"explanation"`
}

type questionEnvelope struct {
	Questions []rawQuestion `json:"questions"`
}

// Parse extracts, repairs, decodes and validates raw oracle output into
// canonical questions. Any defect rejects the whole batch; partial results
// would make question counts unpredictable for the caller.
func Parse(raw string) ([]quiz.Question, error) {
	payload := ExtractJSON(raw)
	if payload == "" {
		return nil, &quiz.ValidationError{Reason: "no JSON content in response"}
	}

	var rawQuestions []rawQuestion
	if err := json.Unmarshal([]byte(payload), &rawQuestions); err != nil {
		var env questionEnvelope
		if err2 := json.Unmarshal([]byte(payload), &env); err2 != nil || env.Questions == nil {
			return nil, &quiz.ValidationError{Reason: fmt.Sprintf("decode: %v", err)}
		}
		rawQuestions = env.Questions
	}
	if len(rawQuestions) == 0 {
		return nil, &quiz.ValidationError{Reason: "empty question list"}
	}

	questions := make([]quiz.Question, 0, len(rawQuestions))
	for i, rq := range rawQuestions {
		q, err := validateQuestion(rq)
		if err != nil {
			return nil, &quiz.ValidationError{Reason: fmt.Sprintf("question %d: %v", i+1, err)}
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func validateQuestion(rq rawQuestion) (quiz.Question, error) {
	text := strings.TrimSpace(rq.Question)
	if text == "" {
		return quiz.Question{}, fmt.Errorf("empty question text")
	}

	if len(rq.Options) != optionCount {
		return quiz.Question{}, fmt.Errorf("expected %d options, got %d", optionCount, len(rq.Options))
	}
	options := make([]string, optionCount)
	seen := make(map[string]bool, optionCount)
	for i, opt := range rq.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return quiz.Question{}, fmt.Errorf("option %d is empty", i+1)
		}
		key := strings.ToLower(opt)
		if seen[key] {
			return quiz.Question{}, fmt.Errorf("duplicate option %q", opt)
		}
		seen[key] = true
		options[i] = opt
	}

	answer, err := resolveAnswer(rq, options)
	if err != nil {
		return quiz.Question{}, err
	}

	return quiz.Question{
		ID:          uuid.NewString(),
		Question:    text,
		Options:     options,
		Answer:      answer,
		Hint:        strings.TrimSpace(rq.Hint),
		Explanation: strings.TrimSpace(rq.Explanation),
	}, nil
}

// resolveAnswer finds the correct-option index among the accepted
// spellings. "answer"/"correctIndex"/"correct_index" are read 0-based,
// "correct" 1-based.
func resolveAnswer(rq rawQuestion, options []string) (int, error) {
	for _, field := range []struct {
		raw      json.RawMessage
		oneBased bool
	}{
		{rq.Answer, false},
		{rq.CorrectIndex, false},
		{rq.CorrectIdx, false},
		{rq.Correct, true},
	} {
		if len(field.raw) == 0 || string(field.raw) == "null" {
			continue
		}
		return resolveIndicator(field.raw, options, field.oneBased)
	}
	return 0, fmt.Errorf("no correct-answer indicator")
}

func resolveIndicator(raw json.RawMessage, options []string, oneBased bool) (int, error) {
	// JSON numbers may arrive as 2 or 2.0; both mean the same index.
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return indexFromInt(int(f), oneBased)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("unreadable answer indicator %s", string(raw))
	}
	s = strings.TrimSpace(s)

	// Numeric string, e.g. "2".
	if n, err := strconv.Atoi(s); err == nil {
		return indexFromInt(n, oneBased)
	}

	// Option letter A-D.
	if len(s) == 1 {
		upper := strings.ToUpper(s)
		if upper >= "A" && upper <= "D" {
			return int(upper[0] - 'A'), nil
		}
	}

	// Last resort: the answer repeated as option text.
	for i, opt := range options {
		if strings.EqualFold(s, opt) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("answer %q matches no option", s)
}

func indexFromInt(n int, oneBased bool) (int, error) {
	if oneBased {
		// A zero here almost always means the model used 0-based
		// indexing despite the field name; accept it.
		if n == 0 {
			return 0, nil
		}
		n--
	}
	if n < 0 || n >= optionCount {
		return 0, fmt.Errorf("answer index %d out of range", n)
	}
	return n, nil
}
