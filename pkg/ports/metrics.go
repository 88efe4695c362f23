package ports

// Metrics receives pipeline counters.
type Metrics interface {
	FrameExtracted()
	VideoProcessed()
	// JobSettled records how a classification job left its queue.
	JobSettled(outcome string)
	// QueuePending reports the backlog length of the named queue.
	QueuePending(queue string, n int)
}
