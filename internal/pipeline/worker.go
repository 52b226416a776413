package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quizway/quizway/internal/docclean"
	"github.com/quizway/quizway/internal/ocr"
	"github.com/quizway/quizway/internal/parser"
	"github.com/quizway/quizway/internal/quiz"
	"github.com/quizway/quizway/internal/quizgen"
	"github.com/quizway/quizway/internal/section"
	"github.com/quizway/quizway/internal/storage"
)

// Worker runs the document-to-quiz pipeline for a single job.
type Worker struct {
	generator *quizgen.Generator
	ocrChain  *ocr.Chain
	audit     *storage.Client
	log       *slog.Logger

	questionsPerSection   int
	maxQuestions          int
	minInputLen           int
	maxPages              int
	maxConcurrentGenerate int
}

type WorkerConfig struct {
	QuestionsPerSection   int
	MaxQuestions          int
	MinInputLen           int
	MaxPages              int
	MaxConcurrentGenerate int
}

func NewWorker(gen *quizgen.Generator, ocrChain *ocr.Chain, audit *storage.Client, log *slog.Logger, cfg WorkerConfig) *Worker {
	return &Worker{
		generator:             gen,
		ocrChain:              ocrChain,
		audit:                 audit,
		log:                   log,
		questionsPerSection:   cfg.QuestionsPerSection,
		maxQuestions:          cfg.MaxQuestions,
		minInputLen:           cfg.MinInputLen,
		maxPages:              cfg.MaxPages,
		maxConcurrentGenerate: cfg.MaxConcurrentGenerate,
	}
}

// Process runs the full pipeline for a queued job and records the outcome
// on the job. Upload bytes are released on every exit path.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)
	defer job.ReleaseFileData()

	result, err := w.run(ctx, job.Filename, job.Title, job.FileData(), job, log)
	if err != nil {
		log.Error("pipeline failed", "error", err)
		job.AddError(userFacingError(err))
		job.SetStatus(StatusFailed, "failed")
		return
	}

	job.SetResult(result)
	job.SetStatus(StatusCompleted, "done")
	log.Info("quiz ready", "questions", len(result.Questions), "reason", result.Reason)
}

// Run executes the pipeline synchronously with no job bookkeeping. Used by
// the blocking API endpoint for small documents.
func (w *Worker) Run(ctx context.Context, filename, title string, data []byte) (*quiz.Result, error) {
	return w.run(ctx, filename, title, data, nil, w.log)
}

func (w *Worker) run(ctx context.Context, filename, title string, data []byte, job *Job, log *slog.Logger) (*quiz.Result, error) {
	advance := func(status JobStatus, phase string) {
		if job != nil {
			job.SetStatus(status, phase)
		}
	}

	// Phase 1: extract pages.
	advance(StatusExtracting, "extracting text")
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	pages, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}
	if w.maxPages > 0 && len(pages) > w.maxPages {
		return nil, fmt.Errorf("%w: %d pages", quiz.ErrTooManyPages, len(pages))
	}
	pages = w.recoverViaOCR(ctx, filename, data, pages, log)
	if totalTextLen(pages) == 0 {
		return nil, &quiz.ExtractionError{
			Format: strings.TrimPrefix(fileExt(filename), "."),
			Err:    errors.New("no extractable text"),
		}
	}

	w.storeAudit(ctx, job, filename, data, log)

	// Phase 2: strip headers, footers and front/back matter.
	advance(StatusCleaning, "removing boilerplate")
	pages = docclean.Clean(pages, docclean.DefaultConfig())

	if totalTextLen(pages) < w.minInputLen {
		return nil, quiz.ErrInputTooShort
	}

	// Phase 3: segment into sections.
	advance(StatusSegmenting, "detecting sections")
	sections := section.Segment(pages, section.DefaultConfig())
	if job != nil {
		job.SetTotalSections(len(sections))
	}
	log.Info("segmented document", "sections", len(sections))

	// Phase 4: synthesize questions per section with bounded concurrency.
	// Results carry their section index so final ordering is by section,
	// regardless of completion order.
	advance(StatusGenerating, "generating questions")
	type sectionResult struct {
		idx    int
		result quiz.Result
	}
	results := make(chan sectionResult, len(sections))
	sem := make(chan struct{}, w.maxConcurrentGenerate)

	for i, sec := range sections {
		sem <- struct{}{}
		go func(i int, sec quiz.Section) {
			defer func() { <-sem }()
			results <- sectionResult{
				idx:    i,
				result: w.generator.Generate(ctx, sec.Title, sec.Content, w.questionsPerSection),
			}
		}(i, sec)
	}

	ordered := make([]quiz.Result, len(sections))
	for range sections {
		r := <-results
		ordered[r.idx] = r.result
		if job != nil {
			job.IncrSectionsProcessed()
		}
	}

	return assemble(ordered, w.maxQuestions), nil
}

// recoverViaOCR replaces empty extraction output with OCR text when a
// provider chain is configured. Image-only PDFs land here.
func (w *Worker) recoverViaOCR(ctx context.Context, filename string, data []byte, pages []quiz.Page, log *slog.Logger) []quiz.Page {
	if totalTextLen(pages) > 0 || w.ocrChain == nil || !w.ocrChain.Configured() {
		return pages
	}
	log.Info("no text extracted, trying ocr")
	text := w.ocrChain.Recognize(ctx, filename, data)
	if text == "" {
		return pages
	}
	text = parser.NormalizeText(text)
	if ocr.IsLikelyFormula(text) {
		log.Info("ocr result looks like a formula")
	}
	return []quiz.Page{{Number: 1, Text: text}}
}

func (w *Worker) storeAudit(ctx context.Context, job *Job, filename string, data []byte, log *slog.Logger) {
	if w.audit == nil {
		return
	}
	id := "adhoc"
	if job != nil {
		id = job.ID
	}
	url, err := w.audit.StoreDocument(ctx, id, filename, data)
	if err != nil {
		log.Warn("audit upload failed", "error", err)
		return
	}
	log.Info("audit copy stored", "url", url)
}

// assemble flattens per-section results in section order, caps the total
// question count, and derives an overall provenance reason.
func assemble(ordered []quiz.Result, maxQuestions int) *quiz.Result {
	var questions []quiz.Question
	sawAI := false
	sawLocal := false
	localReason := ""
	for _, r := range ordered {
		questions = append(questions, r.Questions...)
		switch r.Reason {
		case quiz.ReasonAI, quiz.ReasonAIRetry:
			sawAI = true
		default:
			sawLocal = true
			if localReason == "" {
				localReason = r.Reason
			}
		}
	}
	if maxQuestions > 0 && len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}

	reason := quiz.ReasonAI
	switch {
	case sawAI && sawLocal:
		reason = quiz.ReasonMixed
	case sawLocal:
		reason = localReason
	}
	return &quiz.Result{Questions: questions, Reason: reason}
}

func totalTextLen(pages []quiz.Page) int {
	total := 0
	for _, p := range pages {
		total += len(strings.TrimSpace(p.Text))
	}
	return total
}

func fileExt(filename string) string {
	if idx := strings.LastIndexByte(filename, '.'); idx >= 0 {
		return filename[idx:]
	}
	return ""
}

// userFacingError maps pipeline failures to messages fit for an API
// response.
func userFacingError(err error) string {
	var extractErr *quiz.ExtractionError
	switch {
	case errors.Is(err, quiz.ErrInputTooShort):
		return "document text too short to generate a quiz"
	case errors.Is(err, quiz.ErrTooManyPages):
		return "document has too many pages"
	case errors.As(err, &extractErr):
		return "document is unreadable or contains no extractable text"
	default:
		return fmt.Sprintf("quiz generation failed: %v", err)
	}
}
