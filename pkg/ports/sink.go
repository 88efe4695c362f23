package ports

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveFrame saves an encoded frame captured from a video.
	SaveFrame(sourceName string, index int, data []byte) error

	// SaveClassification saves the raw classifier response for a job.
	SaveClassification(jobID string, data []byte) error
}
