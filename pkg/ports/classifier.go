package ports

import (
	"context"
	"errors"
)

// ErrInvalidCredential reports that the classifier rejected the credential.
// Every later call would fail the same way.
var ErrInvalidCredential = errors.New("classifier: invalid or missing credential")

// Classifier labels a still image.
type Classifier interface {
	// Classify returns raw category labels keyed by category name.
	// An empty or nil map means the classifier declined to answer.
	// Credential failures must wrap ErrInvalidCredential.
	Classify(ctx context.Context, imageData []byte, mimeType string) (map[string]string, error)
}
