// Package queue implements the two serial work queues of the pipeline: the
// video queue, which extracts frames from one video at a time, and the
// classification queue, which keeps exactly one classifier call in flight.
//
// Each queue runs a single worker loop (Run) that pulls one item, processes
// it to completion and then looks at the backlog again. Completed work leaves
// through one outbound channel per queue.
package queue

// backlog is a FIFO of pending items. It is not synchronized; the owning
// queue guards it with its own mutex.
type backlog[T any] struct {
	items []T
}

func (b *backlog[T]) push(items ...T) {
	b.items = append(b.items, items...)
}

func (b *backlog[T]) pop() (T, bool) {
	var zero T
	if len(b.items) == 0 {
		return zero, false
	}
	item := b.items[0]
	b.items[0] = zero
	b.items = b.items[1:]
	return item, true
}

func (b *backlog[T]) drain() []T {
	items := b.items
	b.items = nil
	return items
}

func (b *backlog[T]) len() int {
	return len(b.items)
}

// signal wakes an idle worker. Notifications coalesce.
type signal chan struct{}

func newSignal() signal {
	return make(signal, 1)
}

func (s signal) notify() {
	select {
	case s <- struct{}{}:
	default:
	}
}

// idleGate exposes a channel that is closed while the queue is idle.
// Like backlog it relies on the owner's mutex.
type idleGate struct {
	ch chan struct{}
}

func newIdleGate() *idleGate {
	ch := make(chan struct{})
	close(ch)
	return &idleGate{ch: ch}
}

func (g *idleGate) busy() {
	select {
	case <-g.ch:
		g.ch = make(chan struct{})
	default:
	}
}

func (g *idleGate) idle() {
	select {
	case <-g.ch:
	default:
		close(g.ch)
	}
}

func (g *idleGate) done() <-chan struct{} {
	return g.ch
}
