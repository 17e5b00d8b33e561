// Package broadcast implements a small in-process fan-out channel with
// "lag" semantics: a slow subscriber is told how many values it missed
// instead of being disconnected or back-pressuring the publisher.
//
// There is no broadcast-with-lag library anywhere in the retrieval pack, so
// this is built directly on sync.Mutex and channels, the way air builds its
// own sync.Pool-backed primitives (logger.go, coffer.go) rather than reach
// for a third-party concurrency helper.
package broadcast

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Recv once the Broadcaster has been closed and the
// subscriber has drained everything that was published before the close.
var ErrClosed = errors.New("broadcast: closed")

// Broadcaster fans values of type T out to any number of subscribers.
type Broadcaster[T any] struct {
	mu       sync.Mutex
	subs     map[*Subscriber[T]]struct{}
	capacity int
	closed   bool
}

// New returns a Broadcaster whose subscribers each buffer up to capacity
// unread values before they start lagging.
func New[T any](capacity int) *Broadcaster[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Broadcaster[T]{
		subs:     map[*Subscriber[T]]struct{}{},
		capacity: capacity,
	}
}

// Publish sends v to every current subscriber. It never blocks: a
// subscriber that is behind simply drops its oldest buffered value and
// records that it lagged by one more.
//
// Publishing with no subscribers is a no-op, matching the contract that
// broadcast sends with no receivers are silently ignored.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for s := range b.subs {
		s.push(v)
	}
}

// Subscribe registers a new Subscriber that observes every Action published
// from this point on.
func (b *Broadcaster[T]) Subscribe() *Subscriber[T] {
	s := &Subscriber[T]{
		b:        b,
		capacity: b.capacity,
		signal:   make(chan struct{}, 1),
	}

	b.mu.Lock()
	if b.closed {
		s.closed = true
	} else {
		b.subs[s] = struct{}{}
	}
	b.mu.Unlock()

	return s
}

// Close marks the Broadcaster as closed. Existing subscribers drain their
// remaining buffered values and then observe ErrClosed.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	for s := range b.subs {
		s.markClosed()
	}
	b.subs = map[*Subscriber[T]]struct{}{}
}

func (b *Broadcaster[T]) unsubscribe(s *Subscriber[T]) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// Subscriber observes the values published on a Broadcaster.
type Subscriber[T any] struct {
	b        *Broadcaster[T]
	capacity int

	mu     sync.Mutex
	buf    []T
	missed int
	closed bool
	signal chan struct{}
}

func (s *Subscriber[T]) push(v T) {
	s.mu.Lock()
	if len(s.buf) >= s.capacity {
		s.buf = s.buf[1:]
		s.missed++
	}
	s.buf = append(s.buf, v)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscriber[T]) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Recv waits for the next value. If the subscriber has fallen behind, it
// returns lagged = true and n set to the number of values that were dropped;
// the caller should call Recv again to obtain the next retained value,
// rather than treating the lag as a fatal error.
func (s *Subscriber[T]) Recv(ctx context.Context) (v T, lagged bool, n int, err error) {
	for {
		s.mu.Lock()
		if s.missed > 0 {
			n = s.missed
			s.missed = 0
			s.mu.Unlock()
			return v, true, n, nil
		}

		if len(s.buf) > 0 {
			v = s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return v, false, 0, nil
		}

		closed := s.closed
		s.mu.Unlock()

		if closed {
			return v, false, 0, ErrClosed
		}

		select {
		case <-s.signal:
		case <-ctx.Done():
			return v, false, 0, ctx.Err()
		}
	}
}

// Close unsubscribes from the Broadcaster. It is idempotent.
func (s *Subscriber[T]) Close() {
	s.b.unsubscribe(s)
}
