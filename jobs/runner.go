package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job status values.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrJobNotFound = errors.New("job not found")

// Job is the tracked record of one background task.
type Job struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Status      string      `json:"status"`
	SubmittedAt time.Time   `json:"submitted_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
	Result      interface{} `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// TaskFunc does the actual work. The returned value is stored on the job
// record for later polling.
type TaskFunc func(ctx context.Context) (interface{}, error)

// Runner accepts background tasks and reports their progress.
type Runner interface {
	Submit(label string, task TaskFunc) (*Job, error)
	Get(id string) (*Job, error)
	List() []*Job
	Shutdown(ctx context.Context) error
}

type queued struct {
	id   string
	task TaskFunc
}

// Pool is a bounded worker pool Runner. Workers are started once; submitted
// tasks queue until a worker frees up.
type Pool struct {
	logger *slog.Logger

	mu         sync.Mutex
	jobs       map[string]*Job
	order      []string
	queue      chan queued
	wg         sync.WaitGroup
	submitters sync.WaitGroup
	shutdown   chan struct{}
	closed     bool
}

var ErrRunnerShutdown = errors.New("job runner is shutting down")

func NewPool(workers, queueSize int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 64
	}

	p := &Pool{
		logger:   logger,
		jobs:     make(map[string]*Job),
		queue:    make(chan queued, queueSize),
		shutdown: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for q := range p.queue {
		p.run(q)
	}
}

func (p *Pool) run(q queued) {
	p.mu.Lock()
	job := p.jobs[q.id]
	job.Status = StatusRunning
	label := job.Label
	p.mu.Unlock()

	p.logger.Info("job started", "job_id", q.id, "label", label)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-p.shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := q.task(ctx)
	now := time.Now().UTC()

	p.mu.Lock()
	job.FinishedAt = &now
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
	} else {
		job.Status = StatusCompleted
		job.Result = result
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("job failed", "job_id", q.id, "label", label, "error", err)
	} else {
		p.logger.Info("job completed", "job_id", q.id, "label", label)
	}
}

func (p *Pool) Submit(label string, task TaskFunc) (*Job, error) {
	job := &Job{
		ID:          uuid.NewString(),
		Label:       label,
		Status:      StatusQueued,
		SubmittedAt: time.Now().UTC(),
	}

	// Registering as a submitter under the lock keeps Shutdown from closing
	// the queue while a send is in flight.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrRunnerShutdown
	}
	p.jobs[job.ID] = job
	p.order = append(p.order, job.ID)
	p.submitters.Add(1)
	p.mu.Unlock()

	p.queue <- queued{id: job.ID, task: task}
	p.submitters.Done()
	return p.snapshot(job.ID), nil
}

func (p *Pool) Get(id string) (*Job, error) {
	job := p.snapshot(id)
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// List returns jobs newest-first.
func (p *Pool) List() []*Job {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*Job, 0, len(p.order))
	for i := len(p.order) - 1; i >= 0; i-- {
		cp := *p.jobs[p.order[i]]
		out = append(out, &cp)
	}
	return out
}

// snapshot returns a copy so callers never see concurrent mutation.
func (p *Pool) snapshot(id string) *Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, ok := p.jobs[id]
	if !ok {
		return nil
	}
	cp := *job
	return &cp
}

// Shutdown stops accepting work, cancels running tasks and waits for workers
// to drain, bounded by ctx.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.shutdown)
	// Workers keep draining until the queue closes, so pending sends finish.
	p.submitters.Wait()
	close(p.queue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
