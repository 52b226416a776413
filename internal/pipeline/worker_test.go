package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/quizway/quizway/internal/quiz"
	"github.com/quizway/quizway/internal/quizgen"
)

func testWorker(t *testing.T) *Worker {
	t.Helper()
	gen := quizgen.New(nil, nil, slog.Default())
	return NewWorker(gen, nil, nil, slog.Default(), WorkerConfig{
		QuestionsPerSection:   3,
		MaxQuestions:          30,
		MinInputLen:           100,
		MaxConcurrentGenerate: 4,
	})
}

const lessonText = `Chapter 1. Photosynthesis

Photosynthesis is the process plants use to convert light into chemical energy.
Chlorophyll molecules inside the chloroplasts absorb sunlight during the day.

Chapter 2. Respiration

Cellular respiration releases energy stored in glucose for cellular work.
Mitochondria perform the oxidation reactions that produce adenosine triphosphate.
`

func TestWorkerRunEndToEnd(t *testing.T) {
	w := testWorker(t)

	result, err := w.Run(context.Background(), "lesson.txt", "", []byte(lessonText))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Reason != quiz.ReasonFallback {
		t.Errorf("expected reason %q without an oracle, got %q", quiz.ReasonFallback, result.Reason)
	}
	if len(result.Questions) == 0 {
		t.Fatal("expected questions from fallback generation")
	}
	for _, q := range result.Questions {
		if len(q.Options) != 4 {
			t.Errorf("question %q has %d options", q.Question, len(q.Options))
		}
		if q.Answer < 0 || q.Answer > 3 {
			t.Errorf("question %q answer index out of range: %d", q.Question, q.Answer)
		}
	}
}

func TestWorkerRunInputTooShort(t *testing.T) {
	w := testWorker(t)

	_, err := w.Run(context.Background(), "note.txt", "", []byte("Barely anything here at all today."))
	if !errors.Is(err, quiz.ErrInputTooShort) {
		t.Errorf("expected ErrInputTooShort, got %v", err)
	}
}

func TestWorkerRunUnreadablePDF(t *testing.T) {
	w := testWorker(t)

	_, err := w.Run(context.Background(), "corrupt.pdf", "", []byte("this is not a pdf at all"))
	var extractErr *quiz.ExtractionError
	if !errors.As(err, &extractErr) {
		t.Errorf("expected ExtractionError, got %v", err)
	}
}

func TestWorkerRunTooManyPages(t *testing.T) {
	gen := quizgen.New(nil, nil, slog.Default())
	w := NewWorker(gen, nil, nil, slog.Default(), WorkerConfig{
		QuestionsPerSection:   3,
		MaxQuestions:          30,
		MinInputLen:           10,
		MaxPages:              2,
		MaxConcurrentGenerate: 4,
	})

	doc := `# One

First section body with enough prose to count as a page of content.

# Two

Second section body with enough prose to count as a page of content.

# Three

Third section body with enough prose to count as a page of content.
`
	_, err := w.Run(context.Background(), "big.md", "", []byte(doc))
	if !errors.Is(err, quiz.ErrTooManyPages) {
		t.Errorf("expected ErrTooManyPages, got %v", err)
	}
}

func TestWorkerRunUnsupportedFormat(t *testing.T) {
	w := testWorker(t)

	_, err := w.Run(context.Background(), "slides.pptx", "", []byte("data"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestWorkerProcessSetsJobResult(t *testing.T) {
	w := testWorker(t)

	job := &Job{
		ID:        "job-1",
		DocID:     "doc-1",
		Status:    StatusQueued,
		Filename:  "lesson.txt",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte(lessonText))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors: %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.TotalSections == 0 {
		t.Error("expected section count recorded")
	}
	if snap.Progress.SectionsProcessed != snap.Progress.TotalSections {
		t.Errorf("expected all sections processed, got %d/%d",
			snap.Progress.SectionsProcessed, snap.Progress.TotalSections)
	}
	if job.Result() == nil {
		t.Fatal("expected result on completed job")
	}
	if job.FileData() != nil {
		t.Error("expected upload bytes released after processing")
	}
}

func TestWorkerProcessFailureReleasesFileData(t *testing.T) {
	w := testWorker(t)

	job := &Job{ID: "job-2", Status: StatusQueued, Filename: "tiny.txt", UpdatedAt: time.Now()}
	job.SetFileData([]byte("too small"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected a user-facing error recorded")
	}
	if job.FileData() != nil {
		t.Error("expected upload bytes released after failure")
	}
}

func TestAssembleOrderingAndReason(t *testing.T) {
	ordered := []quiz.Result{
		{Questions: []quiz.Question{{ID: "a1", Question: "A1"}}, Reason: quiz.ReasonAI},
		{Questions: []quiz.Question{{ID: "b1", Question: "B1"}, {ID: "b2", Question: "B2"}}, Reason: quiz.ReasonInvalidAI},
	}
	result := assemble(ordered, 30)
	if result.Reason != quiz.ReasonMixed {
		t.Errorf("expected mixed reason, got %q", result.Reason)
	}
	ids := make([]string, 0, len(result.Questions))
	for _, q := range result.Questions {
		ids = append(ids, q.ID)
	}
	if strings.Join(ids, ",") != "a1,b1,b2" {
		t.Errorf("expected section-order assembly, got %v", ids)
	}
}

func TestAssembleCapsQuestions(t *testing.T) {
	ordered := []quiz.Result{
		{Questions: make([]quiz.Question, 10), Reason: quiz.ReasonAI},
		{Questions: make([]quiz.Question, 10), Reason: quiz.ReasonAI},
	}
	result := assemble(ordered, 15)
	if len(result.Questions) != 15 {
		t.Errorf("expected 15 questions after cap, got %d", len(result.Questions))
	}
	if result.Reason != quiz.ReasonAI {
		t.Errorf("expected all-AI reason, got %q", result.Reason)
	}
}
