// Package lifecycle applies donation lifecycle operations. Transitions are
// optimistic: the coordinator reads the record, checks the access policy, and
// issues one conditional write that only succeeds if the status is unchanged.
// There are no locks and no retries; the first conditional write wins.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/louisbranch/foodshare/internal/platform/errors"
	"github.com/louisbranch/foodshare/internal/platform/grpc/pagination"
	"github.com/louisbranch/foodshare/internal/platform/id"
	"github.com/louisbranch/foodshare/internal/platform/timeouts"
	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/filter"
	"github.com/louisbranch/foodshare/internal/services/donations/policy"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName scopes lifecycle spans.
const TracerName = "github.com/louisbranch/foodshare/donations/lifecycle"

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Geocoder resolves a pickup address to coordinates. A nil result with a nil
// error means the address could not be resolved.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.Coordinates, error)
}

// Notifier is told after every committed write so change subscribers can pull.
type Notifier interface {
	Notify()
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithGeocoder enables best-effort location lookup on create.
func WithGeocoder(g Geocoder) Option {
	return func(c *Coordinator) { c.geocoder = g }
}

// WithNotifier registers the change feed waker.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// WithReadTimeout bounds the read-then-decide phase of each operation.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.readTimeout = d
		}
	}
}

// WithClock overrides the transition timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator overrides donation id generation.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(c *Coordinator) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithTracer overrides the span source.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coordinator) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMetrics records operation outcomes.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// Coordinator validates and applies donation lifecycle operations.
type Coordinator struct {
	donations   storage.DonationStore
	profiles    storage.ProfileStore
	geocoder    Geocoder
	notifier    Notifier
	readTimeout time.Duration
	clock       func() time.Time
	newID       func() (string, error)
	tracer      trace.Tracer
	metrics     *Metrics
}

// New builds a coordinator over the donation ledger and profile store.
func New(donations storage.DonationStore, profiles storage.ProfileStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		donations:   donations,
		profiles:    profiles,
		readTimeout: timeouts.LedgerRead,
		clock:       time.Now,
		newID:       id.NewUUID,
		tracer:      otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListInput selects a page of visible donations.
type ListInput struct {
	Filter    string
	PageSize  int32
	PageToken string
}

// ResolveActor maps an identity to its profile role.
func (c *Coordinator) ResolveActor(ctx context.Context, userID string) (domain.Actor, error) {
	profile, err := c.GetProfile(ctx, userID)
	if err != nil {
		return domain.Actor{}, err
	}
	return profile.Actor(), nil
}

// CreateProfile binds userID to a role. Profiles are insert-only.
func (c *Coordinator) CreateProfile(ctx context.Context, userID string, profile domain.Profile) (domain.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Profile{}, domain.ErrIdentityMissing()
	}
	profile.ID = userID
	normalized, err := domain.NormalizeProfile(profile)
	if err != nil {
		return domain.Profile{}, err
	}
	normalized.CreatedAt = c.now()
	if err := c.profiles.InsertProfile(ctx, normalized); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return domain.Profile{}, domain.ErrProfileExists(userID)
		case isUnavailable(err):
			return domain.Profile{}, domain.ErrLedgerUnavailable("create profile", err)
		}
		return domain.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return normalized, nil
}

// GetProfile loads the caller's profile.
func (c *Coordinator) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Profile{}, domain.ErrIdentityMissing()
	}
	profile, err := c.profiles.GetProfile(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return domain.Profile{}, domain.ErrProfileMissing(userID)
		case isUnavailable(err):
			return domain.Profile{}, domain.ErrLedgerUnavailable("get profile", err)
		}
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// Create records a new pending donation offered by userID.
func (c *Coordinator) Create(ctx context.Context, userID string, in domain.CreateInput) (domain.Donation, error) {
	ctx, span := c.tracer.Start(ctx, "lifecycle.Create")
	defer span.End()

	donation, err := c.create(ctx, userID, in)
	c.finish(ctx, span, "create", err)
	return donation, err
}

func (c *Coordinator) create(ctx context.Context, userID string, in domain.CreateInput) (domain.Donation, error) {
	normalized, category, err := domain.NormalizeCreateInput(in)
	if err != nil {
		return domain.Donation{}, err
	}
	readCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	profile, err := c.GetProfile(readCtx, userID)
	cancel()
	if err != nil {
		return domain.Donation{}, c.readFailure(ctx, "create", err)
	}
	if profile.Role != domain.RoleDonor {
		return domain.Donation{}, domain.ErrPermissionDenied("create")
	}
	if normalized.DonorName == "" {
		normalized.DonorName = profile.DisplayName
	}
	if normalized.Location == nil {
		normalized.Location = c.geocode(ctx, normalized.PickupAddress)
	}

	donationID, err := c.newID()
	if err != nil {
		return domain.Donation{}, fmt.Errorf("generate donation id: %w", err)
	}
	donation := domain.Donation{
		ID:            donationID,
		DonorID:       profile.ID,
		DonorName:     normalized.DonorName,
		FoodCategory:  category,
		Quantity:      normalized.Quantity,
		PickupAddress: normalized.PickupAddress,
		Location:      normalized.Location,
		Notes:         normalized.Notes,
		Status:        domain.StatusPending,
		CreatedAt:     c.now(),
		Version:       1,
	}
	event, err := c.donations.InsertDonation(ctx, donation)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrWriteDenied):
			return domain.Donation{}, domain.ErrPermissionDenied("create")
		case isUnavailable(err):
			return domain.Donation{}, domain.ErrLedgerUnavailable("create", err)
		}
		return domain.Donation{}, fmt.Errorf("insert donation: %w", err)
	}
	c.notify()
	return event.Donation, nil
}

// Read returns one donation when userID may see it. A donation the caller
// may not read is reported as not found.
func (c *Coordinator) Read(ctx context.Context, userID string, donationID string) (domain.Donation, error) {
	donationID = strings.TrimSpace(donationID)
	if !id.ValidUUID(donationID) {
		return domain.Donation{}, domain.ErrDonationIDInvalid(donationID)
	}
	readCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	actor, err := c.ResolveActor(readCtx, userID)
	if err != nil {
		return domain.Donation{}, c.readFailure(ctx, "read", err)
	}
	donation, err := c.donations.GetDonationForReader(readCtx, actor, donationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Donation{}, domain.ErrDonationNotFound(donationID)
		}
		return domain.Donation{}, c.readFailure(ctx, "read", err)
	}
	return donation, nil
}

// List pages the donations userID may see, newest first.
func (c *Coordinator) List(ctx context.Context, userID string, in ListInput) (storage.DonationPage, error) {
	filterKey := strings.TrimSpace(in.Filter)
	cond, err := filter.Parse(filterKey)
	if err != nil {
		return storage.DonationPage{}, domain.ErrFilterInvalid(filterKey, err)
	}
	readCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	actor, err := c.ResolveActor(readCtx, userID)
	if err != nil {
		return storage.DonationPage{}, c.readFailure(ctx, "list", err)
	}
	page, err := c.donations.ListDonationsForReader(readCtx, actor, storage.DonationQuery{
		Filter:    cond,
		FilterKey: filterKey,
		PageSize:  pagination.ClampPageSize(in.PageSize, pagination.PageSizeConfig{Default: defaultPageSize, Max: maxPageSize}),
		PageToken: strings.TrimSpace(in.PageToken),
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			return storage.DonationPage{}, domain.ErrFilterInvalid(filterKey, err)
		}
		return storage.DonationPage{}, c.readFailure(ctx, "list", err)
	}
	return page, nil
}

// Accept moves a pending donation to accepted, binding userID as its shelter.
func (c *Coordinator) Accept(ctx context.Context, userID string, donationID string) (domain.Donation, error) {
	return c.transition(ctx, userID, donationID, policy.OpAccept, domain.StatusPending, domain.StatusAccepted)
}

// Complete moves an accepted donation to completed, binding userID as its
// volunteer.
func (c *Coordinator) Complete(ctx context.Context, userID string, donationID string) (domain.Donation, error) {
	return c.transition(ctx, userID, donationID, policy.OpComplete, domain.StatusAccepted, domain.StatusCompleted)
}

func (c *Coordinator) transition(ctx context.Context, userID string, donationID string, op policy.Operation, from domain.Status, to domain.Status) (domain.Donation, error) {
	donationID = strings.TrimSpace(donationID)
	ctx, span := c.tracer.Start(ctx, "lifecycle."+string(op), trace.WithAttributes(
		attribute.String("donation.id", donationID),
		attribute.String("donation.to_status", string(to)),
	))
	defer span.End()

	donation, err := c.applyTransition(ctx, userID, donationID, op, from, to)
	c.finish(ctx, span, string(op), err)
	return donation, err
}

func (c *Coordinator) applyTransition(ctx context.Context, userID string, donationID string, op policy.Operation, from domain.Status, to domain.Status) (domain.Donation, error) {
	if !id.ValidUUID(donationID) {
		return domain.Donation{}, domain.ErrDonationIDInvalid(donationID)
	}

	readCtx, cancel := context.WithTimeout(ctx, c.readTimeout)
	actor, current, err := c.readForTransition(readCtx, userID, donationID)
	cancel()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Donation{}, domain.ErrTransitionNotAllowed(donationID, string(op), "donation does not exist")
		}
		return domain.Donation{}, c.readFailure(ctx, string(op), err)
	}
	if !policy.Allow(actor, current, op) {
		return domain.Donation{}, domain.ErrTransitionNotAllowed(donationID, string(op), policy.Deny(actor, current, op))
	}

	// Once issued, the conditional write outlives the caller.
	writeCtx := context.WithoutCancel(ctx)
	event, err := c.donations.TransitionDonation(writeCtx, storage.Transition{
		DonationID: donationID,
		From:       from,
		To:         to,
		ActorID:    actor.ID,
		At:         c.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrStatusMismatch):
			return domain.Donation{}, domain.ErrTransitionConflict(donationID, string(op), from)
		case errors.Is(err, storage.ErrNotFound):
			return domain.Donation{}, domain.ErrTransitionNotAllowed(donationID, string(op), "donation does not exist")
		case errors.Is(err, storage.ErrWriteDenied):
			return domain.Donation{}, domain.ErrTransitionNotAllowed(donationID, string(op), "rejected by ledger policy")
		case isUnavailable(err):
			return domain.Donation{}, domain.ErrLedgerUnavailable(string(op), err)
		}
		return domain.Donation{}, fmt.Errorf("%s donation: %w", op, err)
	}
	c.notify()
	return event.Donation, nil
}

func (c *Coordinator) readForTransition(ctx context.Context, userID string, donationID string) (domain.Actor, domain.Donation, error) {
	actor, err := c.ResolveActor(ctx, userID)
	if err != nil {
		return domain.Actor{}, domain.Donation{}, err
	}
	donation, err := c.donations.GetDonation(ctx, donationID)
	if err != nil {
		return domain.Actor{}, domain.Donation{}, err
	}
	return actor, donation, nil
}

// readFailure turns a read-phase error into the caller-facing error. Domain
// errors pass through; an expired read budget is retryable.
func (c *Coordinator) readFailure(ctx context.Context, op string, err error) error {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
		return ctx.Err()
	}
	if isUnavailable(err) {
		return domain.ErrLedgerUnavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Coordinator) geocode(ctx context.Context, address string) *domain.Coordinates {
	if c.geocoder == nil {
		return nil
	}
	geoCtx, cancel := context.WithTimeout(ctx, timeouts.Geocode)
	defer cancel()
	location, err := c.geocoder.Geocode(geoCtx, address)
	if err != nil {
		log.Printf("geocode pickup address: %v", err)
		return nil
	}
	return location
}

func (c *Coordinator) finish(ctx context.Context, span trace.Span, op string, err error) {
	outcome := outcomeOf(err)
	span.SetAttributes(attribute.String("donation.outcome", outcome))
	if err != nil && outcome != OutcomeInvalid && outcome != OutcomeConflict {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.metrics.record(ctx, op, outcome)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeApplied
	case errors.Is(err, domain.ErrInvalidTransition):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, domain.ErrUnavailable):
		return OutcomeUnavailable
	}
	return OutcomeError
}

func (c *Coordinator) notify() {
	if c.notifier != nil {
		c.notifier.Notify()
	}
}

func (c *Coordinator) now() time.Time {
	return c.clock().UTC()
}

func isUnavailable(err error) bool {
	return errors.Is(err, storage.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
