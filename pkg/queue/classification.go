package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/user/ainspire/pkg/pipeline"
	"github.com/user/ainspire/pkg/ports"
)

// OutcomeStatus describes how a job left the classification queue.
type OutcomeStatus string

const (
	// OutcomeClassified means the job produced a reference image.
	OutcomeClassified OutcomeStatus = "classified"
	// OutcomeDeclined means the classifier returned no labels.
	OutcomeDeclined OutcomeStatus = "declined"
	// OutcomeSkipped means the call failed and only this job was dropped.
	OutcomeSkipped OutcomeStatus = "skipped"
	// OutcomeFailed means the call failed on the credential.
	OutcomeFailed OutcomeStatus = "failed"
	// OutcomeDrained means the job was discarded without a call after a
	// credential failure.
	OutcomeDrained OutcomeStatus = "drained"
)

// Outcome reports the settlement of one job. Every enqueued job produces
// exactly one Outcome, in enqueue order.
type Outcome struct {
	Job    pipeline.ClassificationJob
	Status OutcomeStatus
	// Image is set for OutcomeClassified.
	Image *pipeline.ReferenceImage
	Err   error
}

// ClassificationStatus is a snapshot of the classification queue.
type ClassificationStatus struct {
	Busy          bool
	CurrentID     string
	CurrentSource string
	Pending       int
	// LastError holds the credential failure that drained the queue. It is
	// cleared by the next Enqueue.
	LastError error
	// Settled counts outcomes delivered so far.
	Settled int
}

// ClassificationQueue runs one classifier call at a time, in enqueue order.
type ClassificationQueue struct {
	stage   pipeline.ClassifyStage
	logger  ports.Logger
	metrics ports.Metrics

	out  chan Outcome
	wake signal

	mu      sync.Mutex
	pending backlog[pipeline.ClassificationJob]
	current *pipeline.ClassificationJob
	lastErr error
	settled int
	gate    *idleGate
}

// NewClassificationQueue creates a classification queue around stage.
func NewClassificationQueue(stage pipeline.ClassifyStage, logger ports.Logger, metrics ports.Metrics, buffer int) *ClassificationQueue {
	if buffer < 0 {
		buffer = 0
	}
	return &ClassificationQueue{
		stage:   stage,
		logger:  logger.WithComponent("classify-queue"),
		metrics: metrics,
		out:     make(chan Outcome, buffer),
		wake:    newSignal(),
		gate:    newIdleGate(),
	}
}

// Outcomes returns the channel of settled jobs. It is closed when Run
// returns.
func (q *ClassificationQueue) Outcomes() <-chan Outcome {
	return q.out
}

// Enqueue appends jobs to the backlog and clears LastError.
func (q *ClassificationQueue) Enqueue(jobs ...pipeline.ClassificationJob) {
	if len(jobs) == 0 {
		return
	}
	q.mu.Lock()
	q.pending.push(jobs...)
	q.lastErr = nil
	q.gate.busy()
	n := q.pending.len()
	q.mu.Unlock()

	q.metrics.QueuePending("classification", n)
	q.wake.notify()
}

// Status returns a snapshot of the queue.
func (q *ClassificationQueue) Status() ClassificationStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	st := ClassificationStatus{
		Pending:   q.pending.len(),
		LastError: q.lastErr,
		Settled:   q.settled,
	}
	if q.current != nil {
		st.CurrentID = q.current.ID
		st.CurrentSource = q.current.SourceName
	}
	st.Busy = q.current != nil || st.Pending > 0
	return st
}

// LastError returns the sticky credential error, if any.
func (q *ClassificationQueue) LastError() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

// Wait blocks until the queue is idle or ctx is done.
func (q *ClassificationQueue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.gate.done()
	q.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the worker loop. It must be called once; it returns when ctx is
// done, after which the Outcomes channel is closed.
func (q *ClassificationQueue) Run(ctx context.Context) {
	defer close(q.out)

	for {
		job, ok := q.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}

		q.process(ctx, job)

		if ctx.Err() != nil {
			q.mu.Lock()
			q.current = nil
			q.gate.idle()
			q.mu.Unlock()
			return
		}
	}
}

func (q *ClassificationQueue) next() (pipeline.ClassificationJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.pending.pop()
	if !ok {
		q.gate.idle()
		return job, false
	}
	q.current = &job
	q.metrics.QueuePending("classification", q.pending.len())
	return job, true
}

func (q *ClassificationQueue) process(ctx context.Context, job pipeline.ClassificationJob) {
	img, err := q.stage.Execute(ctx, job)

	outcome := Outcome{Job: job}
	switch {
	case err == nil && img == nil:
		outcome.Status = OutcomeDeclined
	case err == nil:
		outcome.Status = OutcomeClassified
		outcome.Image = img
	case errors.Is(err, ports.ErrInvalidCredential):
		q.fail(ctx, job, err)
		return
	default:
		q.logger.Warn("Skipping frame %s from %s: %v", job.ID, job.SourceName, err)
		outcome.Status = OutcomeSkipped
		outcome.Err = err
	}

	q.emit(ctx, outcome)
	q.settle()
}

// fail records the credential error and discards the whole backlog. The
// failed job and every drained job still get an Outcome.
func (q *ClassificationQueue) fail(ctx context.Context, job pipeline.ClassificationJob, err error) {
	q.mu.Lock()
	q.lastErr = err
	drained := q.pending.drain()
	q.mu.Unlock()

	q.metrics.QueuePending("classification", 0)
	q.logger.Error("Classifier rejected the credential, discarding %d queued frame(s): %v", len(drained), err)

	q.emit(ctx, Outcome{Job: job, Status: OutcomeFailed, Err: err})
	for _, j := range drained {
		q.emit(ctx, Outcome{Job: j, Status: OutcomeDrained, Err: err})
	}
	q.settle()
}

func (q *ClassificationQueue) emit(ctx context.Context, outcome Outcome) {
	select {
	case q.out <- outcome:
	case <-ctx.Done():
		return
	}
	q.mu.Lock()
	q.settled++
	q.mu.Unlock()
	q.metrics.JobSettled(string(outcome.Status))
}

func (q *ClassificationQueue) settle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = nil
	if q.pending.len() == 0 {
		q.gate.idle()
	}
}
