package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/pkg/ctxutil"

	"github.com/gofrs/uuid/v5"
)

type trigger struct {
	jobType  domain.JobType
	interval time.Duration
}

// Queue runs registered jobs one at a time in enqueue order. Jobs are kept
// in memory until ClearCompleted drops the finished ones.
type Queue struct {
	mu        sync.Mutex
	handlers  map[domain.JobType]domain.JobHandler
	jobs      []*domain.Job
	triggers  []trigger
	timeout   time.Duration
	publisher domain.BrokerPublisher

	wake    chan struct{}
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewQueue returns a stopped queue. A zero timeout lets jobs run unbounded;
// publisher may be nil.
func NewQueue(timeout time.Duration, publisher domain.BrokerPublisher) *Queue {
	return &Queue{
		handlers:  make(map[domain.JobType]domain.JobHandler),
		timeout:   timeout,
		publisher: publisher,
		wake:      make(chan struct{}, 1),
	}
}

func (q *Queue) Register(jobType domain.JobType, handler domain.JobHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = handler
}

// Every enqueues jobType once per interval while the queue runs. A
// non-positive interval disables the trigger.
func (q *Queue) Every(jobType domain.JobType, interval time.Duration) {
	if interval <= 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.triggers = append(q.triggers, trigger{jobType: jobType, interval: interval})
}

func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.running = true
	triggers := append([]trigger(nil), q.triggers...)
	q.mu.Unlock()

	q.wg.Add(1)
	go q.loop(ctx)

	for _, t := range triggers {
		q.wg.Add(1)
		go q.tick(ctx, t)
	}

	slog.InfoContext(ctx, "[Queue] Start", "triggers", len(triggers))
	return nil
}

// Stop cancels the running job, if any, and waits for the worker to exit.
// Pending jobs stay pending.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	cancel := q.cancel
	q.cancel = nil
	q.mu.Unlock()

	cancel()
	q.wg.Wait()
	slog.Info("[Queue] Stop")
}

func (q *Queue) Enqueue(jobType domain.JobType) (string, error) {
	q.mu.Lock()
	if _, ok := q.handlers[jobType]; !ok {
		q.mu.Unlock()
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownJobType, jobType)
	}

	id, err := uuid.NewV4()
	if err != nil {
		q.mu.Unlock()
		return "", err
	}

	job := &domain.Job{
		ID:         fmt.Sprintf("%s-%s", jobType, id),
		Type:       jobType,
		Status:     domain.JobStatusPending,
		EnqueuedAt: time.Now().UTC(),
	}
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	q.signal()
	return job.ID, nil
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) GetStatus(id string) (domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		if job.ID == id {
			return *job, nil
		}
	}
	return domain.Job{}, domain.ErrNotFound
}

func (q *Queue) GetAll() []domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := make([]domain.Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

func (q *Queue) ClearCompleted() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.jobs[:0]
	for _, job := range q.jobs {
		if !job.Status.Terminal() {
			kept = append(kept, job)
		}
	}
	cleared := len(q.jobs) - len(kept)
	clear(q.jobs[len(kept):])
	q.jobs = kept
	return cleared
}

func (q *Queue) loop(ctx context.Context) {
	defer q.wg.Done()
	for {
		for ctx.Err() == nil && q.runNext(ctx) {
		}
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}
	}
}

// runNext runs the oldest pending job and reports whether one was found.
func (q *Queue) runNext(ctx context.Context) bool {
	q.mu.Lock()
	var job *domain.Job
	for _, j := range q.jobs {
		if j.Status == domain.JobStatusPending {
			job = j
			break
		}
	}
	if job == nil {
		q.mu.Unlock()
		return false
	}
	startedAt := time.Now().UTC()
	job.Status = domain.JobStatusRunning
	job.StartedAt = &startedAt
	handler := q.handlers[job.Type]
	id, jobType := job.ID, job.Type
	q.mu.Unlock()

	jobCtx := ctxutil.WithJobID(ctx, id)
	slog.InfoContext(jobCtx, "[Queue] runNext", "type", jobType, "status", domain.JobStatusRunning)

	result, err := q.execute(jobCtx, handler)

	q.mu.Lock()
	completedAt := time.Now().UTC()
	job.CompletedAt = &completedAt
	if err != nil {
		job.Status = domain.JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = domain.JobStatusCompleted
		job.Result = result
	}
	msg := domain.JobMessage{JobID: id, Type: jobType, Status: job.Status, Error: job.Error, CompletedAt: completedAt}
	q.mu.Unlock()

	if err != nil {
		slog.ErrorContext(jobCtx, "[Queue] runNext", "type", jobType, "error", err)
	} else {
		slog.InfoContext(jobCtx, "[Queue] runNext", "type", jobType, "status", msg.Status, "duration", completedAt.Sub(startedAt))
	}

	if q.publisher != nil {
		if err := q.publisher.PublishJobFinished(context.WithoutCancel(jobCtx), msg); err != nil {
			slog.WarnContext(jobCtx, "[Queue] runNext", "publishJobFinished", err)
		}
	}
	return true
}

// execute turns handler panics into errors so a bad job never stops the worker.
func (q *Queue) execute(ctx context.Context, handler domain.JobHandler) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	return handler(ctx)
}

func (q *Queue) tick(ctx context.Context, t trigger) {
	defer q.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if q.hasPending(t.jobType) {
				slog.InfoContext(ctx, "[Queue] tick", "type", t.jobType, "skipped", "already pending")
				continue
			}
			if _, err := q.Enqueue(t.jobType); err != nil {
				slog.ErrorContext(ctx, "[Queue] tick", "type", t.jobType, "error", err)
			}
		}
	}
}

func (q *Queue) hasPending(jobType domain.JobType) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		if job.Type == jobType && job.Status == domain.JobStatusPending {
			return true
		}
	}
	return false
}
