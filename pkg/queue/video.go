package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/ainspire/pkg/pipeline"
	"github.com/user/ainspire/pkg/ports"
)

// Extractor captures frames from one video.
type Extractor interface {
	Extract(ctx context.Context, src *pipeline.VideoSource, interval float64, onFrame pipeline.FrameHandler) error
}

// VideoStatus is a snapshot of the video queue.
type VideoStatus struct {
	// Busy is true while a video is being sampled or videos are waiting.
	Busy bool
	// Current is the name of the video being sampled, if any.
	Current string
	// Pending is the number of videos waiting behind Current.
	Pending  int
	Interval float64
	// Emitted counts frames handed to the Frames channel so far.
	Emitted   int
	Processed int
}

// VideoQueue samples enqueued videos one at a time, in enqueue order.
type VideoQueue struct {
	extractor Extractor
	logger    ports.Logger
	metrics   ports.Metrics

	out  chan pipeline.ExtractedFrame
	wake signal

	mu        sync.Mutex
	pending   backlog[*pipeline.VideoSource]
	current   *pipeline.VideoSource
	interval  float64
	cancelRun context.CancelFunc
	runDone   chan struct{}
	gate      *idleGate
	emitted   int
	processed int
}

// NewVideoQueue creates a video queue. buffer sizes the Frames channel.
func NewVideoQueue(extractor Extractor, logger ports.Logger, metrics ports.Metrics, interval float64, buffer int) *VideoQueue {
	if buffer < 0 {
		buffer = 0
	}
	return &VideoQueue{
		extractor: extractor,
		logger:    logger.WithComponent("video-queue"),
		metrics:   metrics,
		out:       make(chan pipeline.ExtractedFrame, buffer),
		wake:      newSignal(),
		interval:  interval,
		gate:      newIdleGate(),
	}
}

// Frames returns the channel of extracted frames. It is closed when Run
// returns.
func (q *VideoQueue) Frames() <-chan pipeline.ExtractedFrame {
	return q.out
}

// Enqueue appends videos to the backlog. A running extraction is not
// affected.
func (q *VideoQueue) Enqueue(sources ...*pipeline.VideoSource) {
	if len(sources) == 0 {
		return
	}
	q.mu.Lock()
	q.pending.push(sources...)
	q.gate.busy()
	n := q.pending.len()
	q.mu.Unlock()

	q.metrics.QueuePending("video", n)
	q.wake.notify()
}

// SetInterval changes the sampling interval for videos started afterwards.
func (q *VideoQueue) SetInterval(seconds float64) error {
	if !(seconds > 0) {
		return fmt.Errorf("video queue: invalid interval %v", seconds)
	}
	q.mu.Lock()
	q.interval = seconds
	q.mu.Unlock()
	return nil
}

// Cancel stops the running extraction and drops the whole backlog. When it
// returns no further frame will be emitted for the cancelled work. Cancel is
// idempotent and safe to call in any state.
func (q *VideoQueue) Cancel() {
	q.mu.Lock()
	dropped := q.pending.drain()
	cancel, done := q.cancelRun, q.runDone
	if q.current == nil {
		q.gate.idle()
	}
	q.mu.Unlock()

	for _, src := range dropped {
		src.Release()
	}
	q.metrics.QueuePending("video", 0)
	if len(dropped) > 0 {
		q.logger.Debug("Dropped %d queued video(s)", len(dropped))
	}

	if cancel != nil {
		cancel()
		<-done
	}
}

// Status returns a snapshot of the queue.
func (q *VideoQueue) Status() VideoStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	st := VideoStatus{
		Pending:   q.pending.len(),
		Interval:  q.interval,
		Emitted:   q.emitted,
		Processed: q.processed,
	}
	if q.current != nil {
		st.Current = q.current.Name
	}
	st.Busy = q.current != nil || st.Pending > 0
	return st
}

// Wait blocks until the queue is idle or ctx is done.
func (q *VideoQueue) Wait(ctx context.Context) error {
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
// done, after which the Frames channel is closed.
func (q *VideoQueue) Run(ctx context.Context) {
	defer close(q.out)
	defer q.releasePending()

	for {
		src, runCtx, done := q.next(ctx)
		if src == nil {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}

		q.process(runCtx, src)
		q.finish(src, done)

		if ctx.Err() != nil {
			return
		}
	}
}

func (q *VideoQueue) next(ctx context.Context) (*pipeline.VideoSource, context.Context, chan struct{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	src, ok := q.pending.pop()
	if !ok {
		q.gate.idle()
		return nil, nil, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	q.current = src
	q.cancelRun = cancel
	q.runDone = make(chan struct{})
	q.metrics.QueuePending("video", q.pending.len())
	return src, runCtx, q.runDone
}

func (q *VideoQueue) process(ctx context.Context, src *pipeline.VideoSource) {
	q.mu.Lock()
	interval := q.interval
	q.mu.Unlock()

	q.logger.Debug("Extracting frames from %s every %.1fs", src.Name, interval)

	err := q.extractor.Extract(ctx, src, interval, func(frame pipeline.ExtractedFrame) error {
		return q.emit(ctx, frame)
	})
	switch {
	case ctx.Err() != nil:
		q.logger.Debug("Extraction of %s cancelled", src.Name)
	case err != nil:
		q.logger.Warn("Extraction of %s failed: %v", src.Name, err)
	default:
		q.logger.Debug("Finished extracting %s", src.Name)
	}
}

func (q *VideoQueue) emit(ctx context.Context, frame pipeline.ExtractedFrame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.out <- frame:
	case <-ctx.Done():
		return ctx.Err()
	}

	q.mu.Lock()
	q.emitted++
	q.mu.Unlock()
	q.metrics.FrameExtracted()
	return nil
}

func (q *VideoQueue) finish(src *pipeline.VideoSource, done chan struct{}) {
	src.Release()

	q.mu.Lock()
	cancel := q.cancelRun
	q.current = nil
	q.cancelRun = nil
	q.runDone = nil
	q.processed++
	if q.pending.len() == 0 {
		q.gate.idle()
	}
	q.mu.Unlock()

	cancel()
	close(done)
	q.metrics.VideoProcessed()
}

func (q *VideoQueue) releasePending() {
	q.mu.Lock()
	dropped := q.pending.drain()
	q.gate.idle()
	q.mu.Unlock()
	for _, src := range dropped {
		src.Release()
	}
}
