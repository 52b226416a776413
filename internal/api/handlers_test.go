package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quizway/quizway/internal/config"
	"github.com/quizway/quizway/internal/pipeline"
	"github.com/quizway/quizway/internal/quiz"
)

const lessonText = `Chapter 1. Photosynthesis

Photosynthesis is the process plants use to convert light into chemical energy.
Chlorophyll molecules inside the chloroplasts absorb sunlight during the day.

Chapter 2. Respiration

Cellular respiration releases energy stored in glucose for cellular work.
Mitochondria perform the oxidation reactions that produce adenosine triphosphate.
`

func testConfig() config.Config {
	return config.Config{
		WorkerCount:           2,
		MaxQueueSize:          10,
		MaxConcurrentGenerate: 2,
		MaxUploadBytes:        1 << 20,
		QuestionsPerSection:   3,
		MaxQuestions:          30,
		MinInputLen:           100,
		GenerateTimeout:       30 * time.Second,
		JobTTL:                time.Hour,
	}
}

func testServer(t *testing.T, cfg config.Config, startWorkers bool) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, nil, nil, nil, log)
	if startWorkers {
		ctx, cancel := context.WithCancel(context.Background())
		orch.Start(ctx)
		t.Cleanup(func() {
			cancel()
			orch.Stop()
		})
	}
	return NewServer(orch, log, cfg), orch
}

func uploadRequest(t *testing.T, url, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t, testConfig(), false)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestGenerateSync(t *testing.T) {
	srv, _ := testServer(t, testConfig(), false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/quiz", "lesson.txt", []byte(lessonText)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result quiz.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Questions) == 0 {
		t.Fatal("expected questions in response")
	}
	if result.Reason != quiz.ReasonFallback {
		t.Errorf("expected reason %q without an oracle, got %q", quiz.ReasonFallback, result.Reason)
	}
	for _, q := range result.Questions {
		if len(q.Options) != 4 {
			t.Errorf("question %q has %d options", q.Question, len(q.Options))
		}
	}
}

func TestGenerateSyncInputTooShort(t *testing.T) {
	srv, _ := testServer(t, testConfig(), false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/quiz", "note.txt", []byte("Barely anything here.")))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateSyncUnreadablePDF(t *testing.T) {
	srv, _ := testServer(t, testConfig(), false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/quiz", "corrupt.pdf", []byte("not a pdf")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateSyncUnsupportedType(t *testing.T) {
	srv, _ := testServer(t, testConfig(), false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/quiz", "slides.pptx", []byte("data")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateSyncEmptyFile(t *testing.T) {
	srv, _ := testServer(t, testConfig(), false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/quiz", "empty.txt", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "secret-key"
	srv, _ := testServer(t, cfg, false)

	// Missing token.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	// Wrong token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}

	// Correct token.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with correct token, got %d: %s", rec.Code, rec.Body.String())
	}

	// Health stays public.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected public health endpoint, got %d", rec.Code)
	}
}

func TestAsyncJobFlow(t *testing.T) {
	srv, _ := testServer(t, testConfig(), true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/quiz/async", "lesson.txt", []byte(lessonText)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var submitted struct {
		JobID     string `json:"job_id"`
		StatusURL string `json:"status_url"`
		ResultURL string `json:"result_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if submitted.JobID == "" {
		t.Fatal("expected a job id")
	}

	// Poll until the job settles.
	deadline := time.Now().Add(10 * time.Second)
	var status string
	for time.Now().Before(deadline) {
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, submitted.StatusURL, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status poll returned %d", rec.Code)
		}
		var poll struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &poll); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		status = poll.Status
		if status == string(pipeline.StatusCompleted) || status == string(pipeline.StatusFailed) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if status != string(pipeline.StatusCompleted) {
		t.Fatalf("expected completed job, got %q", status)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, submitted.ResultURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 result, got %d: %s", rec.Code, rec.Body.String())
	}
	var result quiz.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.Questions) == 0 {
		t.Error("expected questions in job result")
	}
}

func TestJobStatusNotFound(t *testing.T) {
	srv, _ := testServer(t, testConfig(), false)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quiz/nope/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestJobResultPending(t *testing.T) {
	srv, orch := testServer(t, testConfig(), false)

	job := &pipeline.Job{ID: "pending-1", Status: pipeline.StatusQueued, UpdatedAt: time.Now()}
	if err := orch.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quiz/pending-1/result", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202 for running job, got %d", rec.Code)
	}
}
