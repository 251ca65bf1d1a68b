// Package interrupt delivers platform interruption notifications (an incoming
// call, another app grabbing the microphone) to the recording controller.
package interrupt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Kind says whether an interruption started or finished.
type Kind int

const (
	Began Kind = iota + 1
	Ended
)

func (k Kind) String() string {
	switch k {
	case Began:
		return "began"
	case Ended:
		return "ended"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts "began"/"ended" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "began", "begin", "start":
		return Began, nil
	case "ended", "end":
		return Ended, nil
	}
	return 0, fmt.Errorf("unknown interruption type %q", s)
}

// Source yields interruptions in chronological order.
type Source interface {
	Events() <-chan Kind
}

// ErrClosed is returned when pushing into a closed Queue.
var ErrClosed = errors.New("interruption queue closed")

// Queue is a Source fed programmatically, e.g. by the control API. Events are
// delivered as pushed; deciding whether one applies is up to the consumer.
type Queue struct {
	mu     sync.RWMutex
	ch     chan Kind
	done   chan struct{}
	once   sync.Once
	closed bool
}

func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Kind, size), done: make(chan struct{})}
}

func (q *Queue) Events() <-chan Kind {
	return q.ch
}

// Push enqueues k, waiting while the buffer is full until ctx is done or the
// queue is closed.
func (q *Queue) Push(ctx context.Context, k Kind) error {
	if k != Began && k != Ended {
		return fmt.Errorf("invalid interruption %v", k)
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- k:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close wakes blocked pushers, then closes the event channel.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
