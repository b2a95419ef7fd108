// Package bus fans committed donation changes out to subscribers. Each
// subscription pulls from the durable change feed with its own cursor, so a
// slow or absent subscriber never holds up writers or other subscribers.
// Writers only signal that the feed moved.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/policy"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("subscription closed")

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultBatchSize    = 100
)

// Option customizes a Bus.
type Option func(*Bus)

// WithPollInterval sets how often idle subscriptions re-check the feed when
// no wake signal arrives, covering writes made by other processes.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.pollInterval = d
		}
	}
}

// WithBatchSize caps how many feed rows one pull reads.
func WithBatchSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// Bus wakes subscriptions when the change feed advances.
type Bus struct {
	feed         storage.ChangeFeed
	pollInterval time.Duration
	batchSize    int

	mu   sync.Mutex
	wake chan struct{}
}

// New builds a bus over feed.
func New(feed storage.ChangeFeed, opts ...Option) *Bus {
	b := &Bus{
		feed:         feed,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		wake:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Notify wakes every waiting subscription. It never blocks.
func (b *Bus) Notify() {
	b.mu.Lock()
	close(b.wake)
	b.wake = make(chan struct{})
	b.mu.Unlock()
}

func (b *Bus) signal() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.wake
}

// Head returns the sequence of the newest committed change.
func (b *Bus) Head(ctx context.Context) (int64, error) {
	seq, err := b.feed.LatestChangeSeq(ctx)
	if err != nil {
		return 0, fmt.Errorf("read feed head: %w", err)
	}
	return seq, nil
}

// SubscribeOptions positions a new subscription in the feed.
type SubscribeOptions struct {
	// Resume starts after AfterSeq instead of at the current feed head.
	Resume   bool
	AfterSeq int64
}

// Subscribe opens a feed of changes actor may read.
func (b *Bus) Subscribe(ctx context.Context, actor domain.Actor, opts SubscribeOptions) (*Subscription, error) {
	return b.subscribe(ctx, opts, func(event domain.ChangeEvent) bool {
		return policy.CanRead(actor, event.Donation)
	})
}

// SubscribeAll opens an unfiltered feed for trusted in-process consumers.
func (b *Bus) SubscribeAll(ctx context.Context, opts SubscribeOptions) (*Subscription, error) {
	return b.subscribe(ctx, opts, nil)
}

func (b *Bus) subscribe(ctx context.Context, opts SubscribeOptions, visible func(domain.ChangeEvent) bool) (*Subscription, error) {
	cursor := opts.AfterSeq
	if !opts.Resume {
		head, err := b.Head(ctx)
		if err != nil {
			return nil, err
		}
		cursor = head
	}
	if cursor < 0 {
		cursor = 0
	}
	return &Subscription{
		bus:     b,
		visible: visible,
		cursor:  cursor,
		done:    make(chan struct{}),
	}, nil
}

// Subscription is one subscriber's position in the change feed. It is not
// safe for concurrent use by multiple goroutines, except for Close.
type Subscription struct {
	bus     *Bus
	visible func(domain.ChangeEvent) bool
	cursor  int64
	pending []domain.ChangeEvent

	closeOnce sync.Once
	done      chan struct{}
}

// Cursor returns the sequence of the last feed row consumed. Passing it as
// AfterSeq with Resume continues where this subscription stopped.
func (s *Subscription) Cursor() int64 {
	if len(s.pending) > 0 {
		return s.pending[0].Seq - 1
	}
	return s.cursor
}

// Next blocks until the next visible change, ctx is done, or the
// subscription is closed. A feed read error is returned without advancing
// the cursor, so calling Next again retries the same rows.
func (s *Subscription) Next(ctx context.Context) (domain.ChangeEvent, error) {
	for {
		if len(s.pending) > 0 {
			event := s.pending[0]
			s.pending = s.pending[1:]
			return event, nil
		}
		select {
		case <-s.done:
			return domain.ChangeEvent{}, ErrClosed
		default:
		}

		// Take the signal before reading so a write landing in between
		// still wakes us.
		wake := s.bus.signal()
		if err := s.pull(ctx); err != nil {
			return domain.ChangeEvent{}, err
		}
		if len(s.pending) > 0 {
			continue
		}

		timer := time.NewTimer(s.bus.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.ChangeEvent{}, ctx.Err()
		case <-s.done:
			timer.Stop()
			return domain.ChangeEvent{}, ErrClosed
		case <-wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (s *Subscription) pull(ctx context.Context) error {
	events, err := s.bus.feed.ListChangesAfter(ctx, s.cursor, s.bus.batchSize)
	if err != nil {
		return fmt.Errorf("pull changes after %d: %w", s.cursor, err)
	}
	for _, event := range events {
		s.cursor = event.Seq
		if s.visible == nil || s.visible(event) {
			s.pending = append(s.pending, event)
		}
	}
	return nil
}

// NextRetry calls Next until it yields an event, retrying feed read errors
// with opts. It gives up on ctx done or ErrClosed.
func (s *Subscription) NextRetry(ctx context.Context, opts ...backoff.RetryOption) (domain.ChangeEvent, error) {
	return backoff.Retry(ctx, func() (domain.ChangeEvent, error) {
		event, err := s.Next(ctx)
		if err != nil && (errors.Is(err, ErrClosed) || ctx.Err() != nil) {
			return domain.ChangeEvent{}, backoff.Permanent(err)
		}
		return event, err
	}, opts...)
}

// Close stops delivery. Pending Next calls return ErrClosed.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
