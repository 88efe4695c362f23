// Package orchestrator wires the video queue, the classification queue and
// the collection store into one running pipeline.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/ainspire/pkg/collection"
	"github.com/user/ainspire/pkg/locale"
	"github.com/user/ainspire/pkg/pipeline"
	"github.com/user/ainspire/pkg/ports"
	"github.com/user/ainspire/pkg/queue"
	"github.com/user/ainspire/pkg/summarizer"
)

// ErrNotStarted is returned by operations that need Start to have run.
var ErrNotStarted = errors.New("orchestrator: not started")

// Config contains all configuration for the orchestrator.
type Config struct {
	// IntervalSeconds is the capture interval for newly started videos.
	IntervalSeconds float64
	// FrameBuffer sizes the channels between the queues.
	FrameBuffer int

	// Reported in the run summary only.
	JPEGQuality   int
	MaxFrameWidth int
	Model         string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		IntervalSeconds: 3,
		FrameBuffer:     16,
		JPEGQuality:     85,
	}
}

// Status is a snapshot of the whole pipeline.
type Status struct {
	Video          queue.VideoStatus
	Classification queue.ClassificationStatus
	// Message is the localized progress line.
	Message string
	// Images is the number of classified images in the collection.
	Images int
}

// Orchestrator moves frames from the video queue through the
// classification queue into the collection store.
type Orchestrator struct {
	videos      *queue.VideoQueue
	jobs        *queue.ClassificationQueue
	store       *collection.Store
	credentials ports.CredentialStore
	logger      ports.Logger
	config      Config
	alerts      chan string

	mu        sync.Mutex
	loc       *locale.Localizer
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   time.Time
	forwarded int
	applied   int
	videoList []summarizer.VideoInfo
	videoIdx  map[string]int
	outcomes  summarizer.JobInfo
	lastErr   error
}

// New creates a new Orchestrator. Nothing runs until Start is called.
func New(
	sampler queue.Extractor,
	classifyStage pipeline.ClassifyStage,
	store *collection.Store,
	credentials ports.CredentialStore,
	loc *locale.Localizer,
	metrics ports.Metrics,
	logger ports.Logger,
	config Config,
) *Orchestrator {
	if config.IntervalSeconds <= 0 {
		config.IntervalSeconds = DefaultConfig().IntervalSeconds
	}
	return &Orchestrator{
		videos:      queue.NewVideoQueue(sampler, logger, metrics, config.IntervalSeconds, config.FrameBuffer),
		jobs:        queue.NewClassificationQueue(classifyStage, logger, metrics, config.FrameBuffer),
		store:       store,
		credentials: credentials,
		logger:      logger.WithComponent("orchestrator"),
		config:      config,
		alerts:      make(chan string, 1),
		loc:         loc,
		videoIdx:    make(map[string]int),
	}
}

// Start launches the queue workers. They stop when ctx is done or Shutdown
// is called.
func (o *Orchestrator) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	o.cancel = cancel
	o.started = time.Now()
	o.mu.Unlock()

	o.wg.Add(4)
	go func() {
		defer o.wg.Done()
		o.videos.Run(runCtx)
	}()
	go func() {
		defer o.wg.Done()
		o.jobs.Run(runCtx)
	}()
	go func() {
		defer o.wg.Done()
		o.forward()
	}()
	go func() {
		defer o.wg.Done()
		o.apply(runCtx)
	}()
}

// Shutdown stops the workers and waits for them to exit.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	o.wg.Wait()
}

// Store returns the collection the pipeline fills.
func (o *Orchestrator) Store() *collection.Store {
	return o.store
}

// Alerts delivers one localized message per credential failure. A message
// is dropped when the previous one has not been read yet.
func (o *Orchestrator) Alerts() <-chan string {
	return o.alerts
}

// Enqueue adds videos to the video queue. Sources that are not videos are
// released and reported by name.
func (o *Orchestrator) Enqueue(sources ...*pipeline.VideoSource) (int, []string) {
	var accepted []*pipeline.VideoSource
	var rejected []string
	for _, src := range sources {
		if src == nil {
			continue
		}
		if !pipeline.IsVideo(src.Name, src.ContentType) {
			o.logger.Warn("Ignoring %s: not a video", src.Name)
			rejected = append(rejected, src.Name)
			src.Release()
			continue
		}
		accepted = append(accepted, src)
	}

	o.mu.Lock()
	for _, src := range accepted {
		if _, ok := o.videoIdx[src.Name]; !ok {
			o.videoIdx[src.Name] = len(o.videoList)
			o.videoList = append(o.videoList, summarizer.VideoInfo{Name: src.Name})
		}
	}
	o.mu.Unlock()

	if len(accepted) > 0 {
		o.logger.Info("Queued %d video(s)", len(accepted))
	}
	o.videos.Enqueue(accepted...)
	return len(accepted), rejected
}

// SetInterval changes the capture interval for videos started afterwards.
func (o *Orchestrator) SetInterval(seconds float64) error {
	return o.videos.SetInterval(seconds)
}

// CancelVideos stops the running extraction and drops queued videos.
// Frames already extracted are still classified.
func (o *Orchestrator) CancelVideos() {
	o.videos.Cancel()
	o.logger.Info("Video extraction cancelled")
}

// SetLanguage switches the language of status messages and alerts.
func (o *Orchestrator) SetLanguage(lang string) error {
	loc, err := locale.New(lang)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.loc = loc
	o.mu.Unlock()
	return nil
}

// Localizer returns the active localizer.
func (o *Orchestrator) Localizer() *locale.Localizer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loc
}

// LastError returns the credential failure of the most recent batch.
func (o *Orchestrator) LastError() error {
	return o.jobs.LastError()
}

// Status returns a snapshot of both queues and the collection.
func (o *Orchestrator) Status() Status {
	st := Status{
		Video:          o.videos.Status(),
		Classification: o.jobs.Status(),
		Images:         len(o.store.Images()),
	}
	st.Message = o.message(st.Video, st.Classification)
	return st
}

// StatusMessage returns the localized progress line.
func (o *Orchestrator) StatusMessage() string {
	return o.message(o.videos.Status(), o.jobs.Status())
}

func (o *Orchestrator) message(v queue.VideoStatus, c queue.ClassificationStatus) string {
	loc := o.Localizer()
	switch {
	case v.Busy:
		return loc.F(locale.MsgExtracting, v.Current, v.Pending)
	case c.Busy:
		return loc.F(locale.MsgClassifying, c.CurrentSource, c.Pending)
	default:
		return loc.T(locale.MsgIdle)
	}
}

// Wait blocks until every enqueued video has been sampled and every frame
// has been settled in the store, or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.mu.Lock()
	started := o.cancel != nil
	o.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	poll := func(done func() bool) error {
		for !done() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		return nil
	}

	for {
		if err := o.videos.Wait(ctx); err != nil {
			return err
		}
		if err := poll(func() bool {
			o.mu.Lock()
			defer o.mu.Unlock()
			return o.forwarded >= o.videos.Status().Emitted
		}); err != nil {
			return err
		}
		if err := o.jobs.Wait(ctx); err != nil {
			return err
		}
		if err := poll(func() bool {
			o.mu.Lock()
			defer o.mu.Unlock()
			return o.applied >= o.jobs.Status().Settled
		}); err != nil {
			return err
		}
		if !o.videos.Status().Busy && !o.jobs.Status().Busy {
			return nil
		}
	}
}

// forward turns each extracted frame into a job, reserves its place in the
// store and queues it for classification.
func (o *Orchestrator) forward() {
	for frame := range o.videos.Frames() {
		job := pipeline.NewJob(uuid.NewString(), frame)
		o.store.OnFrameOrJobCreated(job)
		o.jobs.Enqueue(job)

		o.mu.Lock()
		o.forwarded++
		if i, ok := o.videoIdx[frame.SourceName]; ok {
			o.videoList[i].Frames++
		}
		o.mu.Unlock()
	}
}

// apply settles classification outcomes in the store.
func (o *Orchestrator) apply(ctx context.Context) {
	for outcome := range o.jobs.Outcomes() {
		switch outcome.Status {
		case queue.OutcomeClassified:
			o.store.OnClassificationComplete(*outcome.Image)
		case queue.OutcomeFailed:
			o.store.Discard(outcome.Job.ID)
			o.invalidateCredential(ctx, outcome.Err)
		default:
			o.store.Discard(outcome.Job.ID)
		}

		o.mu.Lock()
		o.record(outcome)
		o.applied++
		o.mu.Unlock()
	}
}

func (o *Orchestrator) record(outcome queue.Outcome) {
	switch outcome.Status {
	case queue.OutcomeClassified:
		o.outcomes.Classified++
	case queue.OutcomeDeclined:
		o.outcomes.Declined++
	case queue.OutcomeSkipped:
		o.outcomes.Skipped++
	case queue.OutcomeFailed:
		o.outcomes.Failed++
		o.lastErr = outcome.Err
	case queue.OutcomeDrained:
		o.outcomes.Drained++
	}
}

// invalidateCredential forgets the rejected key and raises one alert.
func (o *Orchestrator) invalidateCredential(ctx context.Context, cause error) {
	o.logger.Error("Credential rejected, clearing stored key: %v", cause)
	if o.credentials != nil {
		if err := o.credentials.Clear(context.WithoutCancel(ctx)); err != nil {
			o.logger.Warn("Clearing stored credential failed: %v", err)
		}
	}

	select {
	case o.alerts <- o.Localizer().T(locale.MsgInvalidAPIKey):
	default:
	}
}

// Report builds the run summary from what has been settled so far.
func (o *Orchestrator) Report() *summarizer.Summary {
	o.mu.Lock()
	videos := append([]summarizer.VideoInfo(nil), o.videoList...)
	jobs := o.outcomes
	lastErr := o.lastErr
	started := o.started
	lang := o.loc.Language()
	o.mu.Unlock()

	b := summarizer.NewBuilder().
		WithSettings(summarizer.Settings{
			IntervalSeconds: o.videos.Status().Interval,
			JPEGQuality:     o.config.JPEGQuality,
			MaxFrameWidth:   o.config.MaxFrameWidth,
			Model:           o.config.Model,
			Language:        lang,
		}).
		WithJobs(jobs).
		WithLastError(lastErr).
		WithImages(o.store.Images())
	for _, v := range videos {
		b.WithVideo(v.Name, v.Frames)
	}
	if !started.IsZero() {
		b.WithDuration(time.Since(started))
	}
	return b.Build()
}

// String describes the pipeline state for logs.
func (s Status) String() string {
	return fmt.Sprintf("videos busy=%t pending=%d, frames busy=%t pending=%d, images=%d",
		s.Video.Busy, s.Video.Pending, s.Classification.Busy, s.Classification.Pending, s.Images)
}
