package envelope

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrQueueClosed is returned for jobs submitted after Close.
var ErrQueueClosed = errors.New("extraction queue closed")

// Request describes one extraction job. Samples are copied on submit, so
// the caller may reuse or discard its buffer immediately: the worker
// never shares memory with the caller.
type Request struct {
	Samples      []float64
	SegmentCount int
	Quality      Quality

	// OnProgress receives whole-percentage completion updates from the
	// worker goroutine. Optional.
	OnProgress func(percent int)
}

// Result is the outcome of one extraction job.
type Result struct {
	Envelope   Envelope
	Generation uint64
	Err        error
}

// Job is the handle returned by Submit. Its result is delivered exactly
// once on Done.
type Job struct {
	// Generation is the submission sequence number, monotonically
	// increasing per queue. Callers use it to discard results from
	// requests that were superseded before completing.
	Generation uint64

	done chan Result
}

// Done returns the channel the job's result is delivered on.
func (j *Job) Done() <-chan Result {
	return j.done
}

// Wait blocks until the job completes and returns its result.
func (j *Job) Wait() (Envelope, error) {
	res := <-j.done
	return res.Envelope, res.Err
}

type task struct {
	req Request
	job *Job
}

// Queue serializes extraction requests onto a single persistent worker
// goroutine. Jobs run strictly one at a time in FIFO order, so two
// extractions can never race to publish results. A failed job is
// reported on its own handle and never stalls the jobs behind it.
type Queue struct {
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []*task
	gen     uint64
	closed  bool

	wg sync.WaitGroup
}

// NewQueue creates a queue and starts its worker goroutine.
func NewQueue(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{logger: logger}
	q.cond = sync.NewCond(&q.mu)
	q.wg.Go(q.run)

	return q
}

// Submit enqueues an extraction request and returns its job handle.
// Submissions after Close fail immediately with ErrQueueClosed.
func (q *Queue) Submit(req Request) *Job {
	// Copy the sample buffer: message-passing semantics between caller
	// and worker.
	samples := make([]float64, len(req.Samples))
	copy(samples, req.Samples)
	req.Samples = samples

	job := &Job{done: make(chan Result, 1)}

	q.mu.Lock()
	if q.closed {
		gen := q.gen
		q.mu.Unlock()
		job.Generation = gen
		job.done <- Result{Generation: gen, Err: ErrQueueClosed}
		return job
	}

	q.gen++
	job.Generation = q.gen
	q.pending = append(q.pending, &task{req: req, job: job})
	q.cond.Signal()
	q.mu.Unlock()

	return job
}

// Generation returns the sequence number of the most recently submitted
// job. A completion whose generation no longer matches has been
// superseded.
func (q *Queue) Generation() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.gen
}

// Close stops accepting new jobs, drains the pending queue, and waits
// for the worker to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()

	q.wg.Wait()
}

// run is the worker loop: pop the oldest pending task, execute it,
// deliver the result, repeat. Exits once closed and drained.
func (q *Queue) run() {
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		t := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		env, err := q.execute(t.req)
		if err != nil {
			q.logger.Error("waveform extraction failed",
				"generation", t.job.Generation,
				"segments", t.req.SegmentCount,
				"error", err)
		}

		t.job.done <- Result{Envelope: env, Generation: t.job.Generation, Err: err}
	}
}

// execute runs one extraction, converting a worker panic into an error
// so a crashing job cannot take the queue down with it.
func (q *Queue) execute(req Request) (env Envelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			env = nil
			err = fmt.Errorf("extraction worker panic: %v", r)
		}
	}()

	return Extract(req.Samples, req.SegmentCount, req.Quality, req.OnProgress)
}
