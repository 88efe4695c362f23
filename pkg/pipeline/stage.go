// Package pipeline holds the domain types that flow from video files to
// classified reference images, and the Stage abstraction that moves them.
package pipeline

import "context"

// Stage turns one input into one output. Implementations must honour ctx.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc lets a plain function act as a Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}

// ClassifyStage labels one job. A nil image with a nil error means the
// classifier found nothing worth keeping.
type ClassifyStage = Stage[ClassificationJob, *ReferenceImage]

// ClassifyFunc is a StageFunc usable as a ClassifyStage.
type ClassifyFunc = StageFunc[ClassificationJob, *ReferenceImage]
