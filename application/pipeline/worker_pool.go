package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Skryldev/split-lab/domain/model"
	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
	"github.com/Skryldev/split-lab/pkg/logger"
	"github.com/Skryldev/split-lab/quality"
)

// AnalysisPool runs standalone quality analyses on a fixed set of workers
// behind a bounded queue. Submissions that would exceed the queue are
// rejected immediately with a BUSY error instead of blocking the caller.
type AnalysisPool struct {
	analyzer *quality.Analyzer
	workers  int
	log      *logger.Logger

	queue   chan model.AnalysisJob
	results chan model.AnalysisResult
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewAnalysisPool creates an analysis pool. Zero workers defaults to 4;
// the queue holds up to queueDepth pending jobs beyond the ones already
// being worked on (minimum 1).
func NewAnalysisPool(analyzer *quality.Analyzer, workers, queueDepth int, log *logger.Logger) *AnalysisPool {
	if workers <= 0 {
		workers = 4
	}
	if queueDepth <= 0 {
		queueDepth = workers
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AnalysisPool{
		analyzer: analyzer,
		workers:  workers,
		log:      log.Named("pool"),
		queue:    make(chan model.AnalysisJob, queueDepth),
		results:  make(chan model.AnalysisResult, queueDepth+workers),
	}
}

// Start launches the workers. They run until Close is called or ctx is
// canceled; starting twice is a no-op.
func (p *AnalysisPool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	p.log.Debug("analysis pool started",
		zap.Int("workers", p.workers),
		zap.Int("queue_depth", cap(p.queue)))
}

// Submit enqueues a job without blocking. A full queue yields a BUSY
// error; the caller decides whether to retry later. Jobs may be queued
// before Start, they sit in the queue until workers come up.
func (p *AnalysisPool) Submit(job model.AnalysisJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return pkgerrors.NewValidationError("pool", nil, "pool is closed")
	}

	select {
	case p.queue <- job:
		return nil
	default:
		return pkgerrors.NewBusyError(cap(p.queue))
	}
}

// Results returns the channel analysis outcomes arrive on. It is closed
// once the pool shuts down and all accepted jobs have been reported.
func (p *AnalysisPool) Results() <-chan model.AnalysisResult {
	return p.results
}

// Close stops intake and waits for workers to drain the queue. Safe to
// call more than once.
func (p *AnalysisPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	started := p.started
	close(p.queue)
	p.mu.Unlock()

	if started {
		p.wg.Wait()
	} else {
		close(p.results)
	}
}

func (p *AnalysisPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			// report jobs still queued as canceled before leaving
			for {
				select {
				case job, ok := <-p.queue:
					if !ok {
						return
					}
					p.results <- model.AnalysisResult{
						JobID: job.ID,
						Err:   pkgerrors.NewCanceledError("analysis", ctx.Err()),
					}
				default:
					return
				}
			}
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			p.results <- p.process(ctx, id, job)
		}
	}
}

func (p *AnalysisPool) process(ctx context.Context, worker int, job model.AnalysisJob) model.AnalysisResult {
	p.log.Debug("analyzing job",
		zap.Int("worker", worker),
		zap.String("job_id", job.ID))

	report, err := p.analyzer.Analyze(ctx, job.Buffer, job.Reference)
	if err != nil {
		p.log.Warn("pool analysis failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
		res := model.AnalysisResult{JobID: job.ID, Err: err}
		if job.Profile.Valid() && pkgerrors.HasCode(err, pkgerrors.ErrCodeAnalysis) {
			v := quality.ClassifyFailure(job.Profile)
			res.Verdict = &v
		}
		return res
	}

	res := model.AnalysisResult{JobID: job.ID, Report: report}
	if job.Profile.Valid() {
		v := quality.Classify(report, job.Profile)
		res.Verdict = &v
	}
	return res
}
