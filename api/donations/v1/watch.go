package donationsv1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultWatchPageSize       = 200
	defaultWatchInitialBackoff = 250 * time.Millisecond
	defaultWatchMaxBackoff     = 10 * time.Second
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Filter narrows the full read. Streamed events are not filtered.
	Filter         string
	PageSize       int32
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// OnReset receives every visible donation after each full read.
	OnReset func(donations []*Donation)
	// OnEvent receives each streamed change.
	OnEvent func(event *DonationEvent)
	// OnDisconnect is told why a stream ended before Watch reconnects.
	OnDisconnect func(err error)
}

// Watch mirrors the caller's visible donations until ctx is done. Each
// connection starts with a fresh full read and then streams changes after
// the feed position observed by that read. A broken stream is retried with
// exponential backoff; authentication and argument errors end the watch.
func Watch(ctx context.Context, client DonationServiceClient, opts WatchOptions) error {
	if client == nil {
		return errors.New("donations client is required")
	}
	opts = opts.normalized()
	for {
		stream, err := backoff.Retry(ctx, func() (DonationService_SubscribeDonationsClient, error) {
			stream, err := connect(ctx, client, opts)
			if err != nil && !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return stream, err
		},
			backoff.WithBackOff(opts.schedule()),
			backoff.WithMaxElapsedTime(0),
		)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		err = consume(stream, opts)
		if ctx.Err() != nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		opts.OnDisconnect(err)
	}
}

func (o WatchOptions) normalized() WatchOptions {
	if o.PageSize <= 0 {
		o.PageSize = defaultWatchPageSize
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = defaultWatchInitialBackoff
	}
	if o.MaxBackoff < o.InitialBackoff {
		o.MaxBackoff = defaultWatchMaxBackoff
	}
	if o.OnReset == nil {
		o.OnReset = func([]*Donation) {}
	}
	if o.OnEvent == nil {
		o.OnEvent = func(*DonationEvent) {}
	}
	if o.OnDisconnect == nil {
		o.OnDisconnect = func(error) {}
	}
	return o
}

func (o WatchOptions) schedule() *backoff.ExponentialBackOff {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = o.InitialBackoff
	schedule.MaxInterval = o.MaxBackoff
	return schedule
}

func connect(ctx context.Context, client DonationServiceClient, opts WatchOptions) (DonationService_SubscribeDonationsClient, error) {
	donations, feedSeq, err := readAll(ctx, client, opts)
	if err != nil {
		return nil, err
	}
	stream, err := client.SubscribeDonations(ctx, &SubscribeDonationsRequest{AfterSeq: feedSeq, Resume: true})
	if err != nil {
		return nil, fmt.Errorf("subscribe donations: %w", err)
	}
	opts.OnReset(donations)
	return stream, nil
}

func readAll(ctx context.Context, client DonationServiceClient, opts WatchOptions) ([]*Donation, int64, error) {
	var (
		donations []*Donation
		feedSeq   int64
		pageToken string
	)
	for page := 0; ; page++ {
		resp, err := client.ListDonations(ctx, &ListDonationsRequest{
			Filter:    opts.Filter,
			PageSize:  opts.PageSize,
			PageToken: pageToken,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("list donations: %w", err)
		}
		if page == 0 {
			feedSeq = resp.GetFeedSeq()
		}
		donations = append(donations, resp.GetDonations()...)
		pageToken = resp.GetNextPageToken()
		if pageToken == "" {
			return donations, feedSeq, nil
		}
	}
}

func consume(stream DonationService_SubscribeDonationsClient, opts WatchOptions) error {
	for {
		event, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return status.Error(codes.Unavailable, "donation stream ended")
			}
			return err
		}
		opts.OnEvent(event)
	}
}

func retryable(err error) bool {
	if err == nil {
		return true
	}
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied, codes.InvalidArgument,
		codes.FailedPrecondition, codes.Unimplemented, codes.NotFound:
		return false
	}
	return true
}

// Replica is a version-ordered local copy of donations built from Watch
// callbacks.
type Replica struct {
	mu        sync.RWMutex
	donations map[string]*Donation
}

// NewReplica returns an empty replica.
func NewReplica() *Replica {
	return &Replica{donations: make(map[string]*Donation)}
}

// Reset replaces the replica with a full read.
func (r *Replica) Reset(donations []*Donation) {
	next := make(map[string]*Donation, len(donations))
	for _, d := range donations {
		if d.GetId() != "" {
			next[d.Id] = d
		}
	}
	r.mu.Lock()
	r.donations = next
	r.mu.Unlock()
}

// Apply stores the event's record unless a newer version is already held.
// It reports whether the replica changed.
func (r *Replica) Apply(event *DonationEvent) bool {
	d := event.GetDonation()
	if d.GetId() == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.donations[d.Id]; ok && current.GetVersion() >= d.GetVersion() {
		return false
	}
	r.donations[d.Id] = d
	return true
}

// Get returns one donation.
func (r *Replica) Get(donationID string) (*Donation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.donations[donationID]
	return d, ok
}

// Snapshot returns every held donation, oldest first.
func (r *Replica) Snapshot() []*Donation {
	r.mu.RLock()
	out := make([]*Donation, 0, len(r.donations))
	for _, d := range r.donations {
		out = append(out, d)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Id < out[j].Id
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
