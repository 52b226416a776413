package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizway/quizway/internal/parser"
	"github.com/quizway/quizway/internal/pipeline"
	"github.com/quizway/quizway/internal/quiz"
)

// handleGenerate runs the pipeline synchronously and returns the finished
// quiz. Suited to small documents; large uploads should use the async
// endpoint instead.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.GenerateTimeout)
	defer cancel()

	worker := s.orchestrator.NewWorker()
	result, err := worker.Run(ctx, filename, r.FormValue("title"), data)
	if err != nil {
		s.writeGenerateError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleGenerateAsync queues the document and returns a job handle for
// status polling.
func (s *Server) handleGenerateAsync(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        uuid.NewString(),
		DocID:     pipeline.ContentHashHex(data)[:16],
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     r.FormValue("title"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"doc_id":     job.DocID,
		"status":     job.Status,
		"status_url": fmt.Sprintf("/api/quiz/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/quiz/%s/result", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
		result := job.Result()
		if result == nil {
			jsonError(w, "result missing", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	case pipeline.StatusFailed:
		msg := "quiz generation failed"
		if len(snap.Progress.Errors) > 0 {
			msg = snap.Progress.Errors[0]
		}
		jsonError(w, msg, http.StatusUnprocessableEntity)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"status": snap.Status,
			"phase":  snap.Phase,
		})
	}
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	stats := s.orchestrator.OracleStats()
	if stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"provider": s.cfg.OracleProvider,
		"model":    s.cfg.OracleModel,
		"stats":    stats.Snapshot(),
	})
}

// readUpload parses the multipart form, enforces size and format limits,
// and returns the sanitized filename with the file bytes. On failure it
// writes the error response and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	// Limit total request size, with slack for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	if len(data) == 0 {
		jsonError(w, "empty file", http.StatusBadRequest)
		return "", nil, false
	}
	return filename, data, true
}

// writeGenerateError maps pipeline failures onto HTTP statuses. Input
// problems are the caller's to fix; anything else is a 500.
func (s *Server) writeGenerateError(w http.ResponseWriter, err error) {
	var extractErr *quiz.ExtractionError
	switch {
	case errors.Is(err, quiz.ErrInputTooShort):
		jsonError(w, "document text too short to generate a quiz", http.StatusUnprocessableEntity)
	case errors.Is(err, quiz.ErrTooManyPages):
		jsonError(w, "document has too many pages", http.StatusRequestEntityTooLarge)
	case errors.As(err, &extractErr):
		jsonError(w, "document is unreadable or contains no extractable text", http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		jsonError(w, "quiz generation timed out", http.StatusGatewayTimeout)
	default:
		s.log.Error("generation failed", "error", err)
		jsonError(w, "quiz generation failed", http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
