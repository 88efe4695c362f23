// Package classify turns a classification job into a reference image by
// asking a Classifier for labels.
package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/ainspire/pkg/pipeline"
	"github.com/user/ainspire/pkg/ports"
)

// Stage classifies one job at a time.
type Stage struct {
	classifier ports.Classifier
	sink       ports.DebugSink
	logger     ports.Logger
}

// New creates a new classify stage.
func New(classifier ports.Classifier, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		classifier: classifier,
		sink:       sink,
		logger:     logger.WithComponent("classifier"),
	}
}

// Execute classifies the job's image. It returns a nil image and a nil error
// when the classifier has nothing to say about the frame. Labels outside the
// known categories are discarded.
func (s *Stage) Execute(ctx context.Context, job pipeline.ClassificationJob) (*pipeline.ReferenceImage, error) {
	s.logger.Debug("Classifying frame %s from %s at %.2fs", job.ID, job.SourceName, job.TimestampSeconds)

	raw, err := s.classifier.Classify(ctx, job.ImageData, job.MimeType)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", job.ID, err)
	}

	if s.sink.Enabled() {
		if data, err := json.MarshalIndent(raw, "", "  "); err == nil {
			s.sink.SaveClassification(job.ID, data)
		}
	}

	c := pipeline.NewClassification(raw)
	if c.Empty() {
		s.logger.Debug("No labels for frame %s", job.ID)
		return nil, nil
	}

	return pipeline.NewReferenceImage(job, c), nil
}

var _ pipeline.ClassifyStage = (*Stage)(nil)
