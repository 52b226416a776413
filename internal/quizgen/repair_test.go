package quizgen

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	raw := "Here are your questions:\n```json\n[{\"question\":\"Q\"}]\n```\nEnjoy!"
	got := ExtractJSON(raw)
	want := `[{"question":"Q"}]`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtractJSONProseWrapped(t *testing.T) {
	raw := `Sure! The array is [{"question":"Q1"},{"question":"Q2"}] as requested.`
	got := ExtractJSON(raw)
	want := `[{"question":"Q1"},{"question":"Q2"}]`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtractJSONTrailingCommas(t *testing.T) {
	raw := `[{"question":"Q","options":["a","b","c","d",],},]`
	got := ExtractJSON(raw)
	var v interface{}
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("repaired JSON still invalid: %v\n%s", err, got)
	}
}

func TestExtractJSONBracketsInsideStrings(t *testing.T) {
	raw := `[{"question":"What does [x] mean?","options":["a","b","c","d"]}] trailing prose ]`
	got := ExtractJSON(raw)
	var v []map[string]interface{}
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, got)
	}
	if len(v) != 1 {
		t.Errorf("expected 1 element, got %d", len(v))
	}
}

func TestExtractJSONRawNewlineInString(t *testing.T) {
	raw := "[{\"question\":\"line one\nline two\"}]"
	got := ExtractJSON(raw)
	var v []map[string]string
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, got)
	}
	if v[0]["question"] != "line one\nline two" {
		t.Errorf("newline not preserved: %q", v[0]["question"])
	}
}

func TestExtractJSONSingleQuoted(t *testing.T) {
	raw := `[{'question': 'Q', 'options': ['a', 'b', 'c', 'd'], 'answer': 0}]`
	got := ExtractJSON(raw)
	var v interface{}
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, got)
	}
}

func TestExtractJSONNoContent(t *testing.T) {
	for _, raw := range []string{"", "   ", "I could not generate questions."} {
		if got := ExtractJSON(raw); got != "" {
			t.Errorf("expected empty for %q, got %q", raw, got)
		}
	}
}

func TestExtractJSONTruncated(t *testing.T) {
	raw := `[{"question":"Q","options":["a","b"`
	got := ExtractJSON(raw)
	if got == "" {
		t.Fatal("expected truncated content to pass through, got empty")
	}
	var v interface{}
	if err := json.Unmarshal([]byte(got), &v); err == nil {
		t.Error("expected truncated JSON to stay unparseable")
	}
}
