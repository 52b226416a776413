package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quizway/quizway/internal/config"
	"github.com/quizway/quizway/internal/ocr"
	"github.com/quizway/quizway/internal/oracle"
	"github.com/quizway/quizway/internal/quizgen"
	"github.com/quizway/quizway/internal/storage"
)

// Orchestrator manages the quiz-generation worker pool and job registry.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	generator *quizgen.Generator
	ocrChain  *ocr.Chain
	audit     *storage.Client
	stats     *oracle.Stats
	log       *slog.Logger
	cfg       config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator wires the generation stack. A nil oracle is valid and
// runs the whole service on the local fallback generator.
func NewOrchestrator(cfg config.Config, o oracle.Oracle, ocrChain *ocr.Chain, audit *storage.Client, log *slog.Logger) *Orchestrator {
	stats := oracle.NewStats(time.Hour)
	gen := quizgen.New(WithRetries(o), stats, log)
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		generator: gen,
		ocrChain:  ocrChain,
		audit:     audit,
		stats:     stats,
		log:       log,
		cfg:       cfg,
	}
}

// Start launches worker goroutines and the job-store janitor.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := o.NewWorker()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					jobCtx, jobCancel := context.WithTimeout(workerCtx, o.cfg.GenerateTimeout)
					w.Process(jobCtx, job)
					jobCancel()
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// NewWorker builds a worker bound to this orchestrator's stack, for the
// pool and for the synchronous API path.
func (o *Orchestrator) NewWorker() *Worker {
	return NewWorker(o.generator, o.ocrChain, o.audit, o.log, WorkerConfig{
		QuestionsPerSection:   o.cfg.QuestionsPerSection,
		MaxQuestions:          o.cfg.MaxQuestions,
		MinInputLen:           o.cfg.MinInputLen,
		MaxPages:              o.cfg.MaxPDFPages,
		MaxConcurrentGenerate: o.cfg.MaxConcurrentGenerate,
	})
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// OracleStats exposes the rolling latency window for the stats endpoint.
func (o *Orchestrator) OracleStats() *oracle.Stats {
	return o.stats
}
