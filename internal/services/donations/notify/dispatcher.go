package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/louisbranch/foodshare/internal/platform/id"
	"github.com/louisbranch/foodshare/internal/platform/timeouts"
	"github.com/louisbranch/foodshare/internal/services/donations/bus"
	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/policy"
	"github.com/louisbranch/foodshare/internal/services/donations/render"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
)

// DefaultConsumer names the dispatcher's feed checkpoint.
const DefaultConsumer = "notify.dispatcher"

const (
	defaultDeliveryAttempts = 3
	defaultRetryInitial     = 200 * time.Millisecond
	defaultRetryMax         = 5 * time.Second
)

// Feed opens the unfiltered change stream the dispatcher consumes.
type Feed interface {
	SubscribeAll(ctx context.Context, opts bus.SubscribeOptions) (*bus.Subscription, error)
}

// Config tunes a Dispatcher.
type Config struct {
	Consumer         string
	DeliveryAttempts uint
	RetryInitial     time.Duration
	RetryMax         time.Duration
	Clock            func() time.Time
	NewID            func() (string, error)
	Logf             func(format string, args ...any)
}

func (c Config) normalized() Config {
	if strings.TrimSpace(c.Consumer) == "" {
		c.Consumer = DefaultConsumer
	}
	if c.DeliveryAttempts == 0 {
		c.DeliveryAttempts = defaultDeliveryAttempts
	}
	if c.RetryInitial <= 0 {
		c.RetryInitial = defaultRetryInitial
	}
	if c.RetryMax < c.RetryInitial {
		c.RetryMax = defaultRetryMax
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.NewID == nil {
		c.NewID = id.NewID
	}
	if c.Logf == nil {
		c.Logf = log.Printf
	}
	return c
}

// Dispatcher consumes the change feed and notifies eligible recipients.
// Delivery is at-least-once: the checkpoint advances only after an event is
// fully handled, and dedupe keys absorb replays.
type Dispatcher struct {
	feed     Feed
	profiles storage.ProfileStore
	inbox    storage.InboxStore
	cursors  storage.CursorStore
	channels []Channel
	cfg      Config
}

// NewDispatcher builds a dispatcher. Channels may be empty.
func NewDispatcher(feed Feed, profiles storage.ProfileStore, inbox storage.InboxStore, cursors storage.CursorStore, channels []Channel, cfg Config) *Dispatcher {
	return &Dispatcher{
		feed:     feed,
		profiles: profiles,
		inbox:    inbox,
		cursors:  cursors,
		channels: channels,
		cfg:      cfg.normalized(),
	}
}

// Run consumes events until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d == nil || d.feed == nil || d.profiles == nil || d.inbox == nil || d.cursors == nil {
		return fmt.Errorf("dispatcher is not configured")
	}
	cursor, err := d.cursors.GetCursor(ctx, d.cfg.Consumer)
	if err != nil {
		return fmt.Errorf("load dispatcher cursor: %w", err)
	}
	sub, err := d.feed.SubscribeAll(ctx, bus.SubscribeOptions{Resume: true, AfterSeq: cursor})
	if err != nil {
		return fmt.Errorf("subscribe dispatcher: %w", err)
	}
	defer sub.Close()
	d.cfg.Logf("notification dispatcher started after seq %d", cursor)

	for {
		event, err := sub.NextRetry(ctx, d.retryOptions(0)...)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, bus.ErrClosed) {
				return nil
			}
			return err
		}
		if _, err := backoff.Retry(ctx, func() (struct{}, error) {
			return struct{}{}, d.Handle(ctx, event)
		}, d.retryOptions(0)...); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("handle change %d: %w", event.Seq, err)
		}
		if err := d.cursors.PutCursor(ctx, d.cfg.Consumer, event.Seq); err != nil {
			d.cfg.Logf("checkpoint dispatcher at seq %d: %v", event.Seq, err)
		}
	}
}

// Handle notifies every eligible recipient of event. It is safe to call
// again for the same event.
func (d *Dispatcher) Handle(ctx context.Context, event domain.ChangeEvent) error {
	recipients, err := d.recipients(ctx, event)
	if err != nil {
		return err
	}
	var shelterName string
	if event.Transitioned(domain.StatusAccepted) {
		shelterName = d.displayName(ctx, event.Donation.ShelterID)
	}
	for _, recipient := range recipients {
		messageType, ok := Compose(event, recipient.Role, recipient.ID)
		if !ok {
			continue
		}
		if !policy.CanRead(recipient.Actor(), event.Donation) {
			continue
		}
		if err := d.notify(ctx, event, recipient, messageType, shelterName); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) recipients(ctx context.Context, event domain.ChangeEvent) ([]domain.Profile, error) {
	donation := event.Donation
	switch {
	case event.Kind == domain.ChangeCreated:
		return d.byRole(ctx, domain.RoleShelter)
	case event.Transitioned(domain.StatusAccepted):
		volunteers, err := d.byRole(ctx, domain.RoleVolunteer)
		if err != nil {
			return nil, err
		}
		donor, err := d.profile(ctx, donation.DonorID)
		if err != nil {
			return nil, err
		}
		return append(donor, volunteers...), nil
	case event.Transitioned(domain.StatusCompleted):
		return d.profile(ctx, donation.DonorID)
	}
	return nil, nil
}

func (d *Dispatcher) byRole(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	profiles, err := d.profiles.ListProfilesByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list %s profiles: %w", role, err)
	}
	return profiles, nil
}

func (d *Dispatcher) profile(ctx context.Context, profileID string) ([]domain.Profile, error) {
	p, err := d.profiles.GetProfile(ctx, profileID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", profileID, err)
	}
	return []domain.Profile{p}, nil
}

func (d *Dispatcher) displayName(ctx context.Context, profileID string) string {
	if profileID == "" {
		return ""
	}
	p, err := d.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return ""
	}
	return p.DisplayName
}

func (d *Dispatcher) notify(ctx context.Context, event domain.ChangeEvent, recipient domain.Profile, messageType string, shelterName string) error {
	out := render.Render(render.NewLocalizer(recipient.Locale), render.Input{
		MessageType: messageType,
		Donation:    event.Donation,
		ShelterName: shelterName,
	})
	notificationID, err := d.cfg.NewID()
	if err != nil {
		return fmt.Errorf("generate notification id: %w", err)
	}
	inserted, err := d.inbox.PutNotification(ctx, storage.NotificationRecord{
		ID:          notificationID,
		RecipientID: recipient.ID,
		DonationID:  event.Donation.ID,
		MessageType: messageType,
		Title:       out.Title,
		Body:        out.Body,
		DedupeKey:   DedupeKey(event, recipient.ID),
		CreatedAt:   d.cfg.Clock().UTC(),
	})
	if err != nil {
		return fmt.Errorf("enqueue %s for %s: %w", messageType, recipient.ID, err)
	}
	if !inserted {
		return nil
	}
	d.handOff(ctx, Delivery{
		Recipient:  recipient,
		DonationID: event.Donation.ID,
		Title:      out.Title,
		Body:       out.Body,
	})
	return nil
}

// handOff pushes delivery to every external channel with a bounded retry.
// Failures are logged and dropped.
func (d *Dispatcher) handOff(ctx context.Context, delivery Delivery) {
	for _, channel := range d.channels {
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, timeouts.ExternalDelivery)
			defer cancel()
			return struct{}{}, channel.Deliver(attemptCtx, delivery)
		}, d.retryOptions(d.cfg.DeliveryAttempts)...)
		if err != nil {
			d.cfg.Logf("drop %s delivery to %s for donation %s: %v", channel.Name(), delivery.Recipient.ID, delivery.DonationID, err)
		}
	}
}

func (d *Dispatcher) retryOptions(maxTries uint) []backoff.RetryOption {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = d.cfg.RetryInitial
	schedule.MaxInterval = d.cfg.RetryMax
	opts := []backoff.RetryOption{
		backoff.WithBackOff(schedule),
		backoff.WithMaxElapsedTime(0),
	}
	if maxTries > 0 {
		opts = append(opts, backoff.WithMaxTries(maxTries))
	}
	return opts
}
