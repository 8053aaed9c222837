package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sjperalta/bailbooks-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs queued jobs on a fixed pool and owns the interval and cron schedules.
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int
	cron          *cron.Cron
	stats         WorkerStats
	statsMu       sync.RWMutex
}

// WorkerStats holds statistics about the worker. CompletedJobs counts every finished
// job; FailedJobs is the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs    int      `json:"active_jobs"`
	CompletedJobs int64    `json:"completed_jobs"`
	FailedJobs    int64    `json:"failed_jobs"`
	QueueLength   int      `json:"queue_length"`
	MaxConcurrent int      `json:"max_concurrent"`
	Schedules     []string `json:"schedules"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		cron:          cron.New(cron.WithLocation(time.UTC)),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}
	w.cron.Start()

	return w
}

// Enqueue adds a job to be processed by the worker pool
func (w *Worker) Enqueue(job Job) {
	select {
	case w.queue <- job:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously")
		w.run("queue-overflow", job)
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()
		w.run("async", job)
	}()
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	name := fmt.Sprintf("worker-%d", workerID)
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run(name, job)
		}
	}
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, false, job)
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, true, job)
}

func (w *Worker) schedule(name string, interval time.Duration, immediate bool, job Job) {
	w.addSchedule(fmt.Sprintf("%s every %s", name, interval))
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.run(name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run(name, job)
			}
		}
	}()
}

// ScheduleCron runs a job on a standard five-field cron spec evaluated in UTC.
func (w *Worker) ScheduleCron(name, spec string, job Job) error {
	_, err := w.cron.AddFunc(spec, func() {
		if w.ctx.Err() != nil {
			return
		}
		w.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: invalid cron spec %q: %w", name, spec, err)
	}
	w.addSchedule(fmt.Sprintf("%s at %q", name, spec))
	return nil
}

func (w *Worker) run(name string, job Job) {
	w.trackJobStart()
	defer w.trackJobEnd()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Worker] Job panic", slog.String("job", name), slog.Any("panic", r))
			w.trackJobFailure()
		}
	}()

	start := time.Now()
	if err := job(w.ctx); err != nil {
		logger.Error("[Worker] Job error", slog.String("job", name), slog.Any("error", err))
		w.trackJobFailure()
		return
	}
	logger.Debug("[Worker] Job completed", slog.String("job", name), slog.Duration("elapsed", time.Since(start)))
}

// Shutdown stops the schedules, drains the pool and waits for running jobs.
func (w *Worker) Shutdown() {
	stopped := w.cron.Stop()
	w.cancel()
	close(w.queue)
	<-stopped.Done()
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	stats.Schedules = append([]string(nil), w.stats.Schedules...)
	return stats
}

func (w *Worker) addSchedule(desc string) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.Schedules = append(w.stats.Schedules, desc)
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
