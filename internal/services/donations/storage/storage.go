// Package storage declares the persistence contracts for the donations
// service. Implementations enforce lifecycle rules themselves, so a caller
// that skips the coordinator still cannot write an illegal transition.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
)

var (
	// ErrNotFound indicates a requested record is missing or not visible.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates an insert collided with an existing key.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrStatusMismatch indicates a conditional write found a different status.
	ErrStatusMismatch = errors.New("status mismatch")
	// ErrWriteDenied indicates the storage-level policy rejected a write.
	ErrWriteDenied = errors.New("write denied by storage policy")
	// ErrUnavailable indicates a transient storage failure such as a busy lock.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrInvalidArgument indicates a malformed query such as a stale page token.
	ErrInvalidArgument = errors.New("invalid storage argument")
)

// InboxCap is the number of notifications retained per recipient.
const InboxCap = 10

// Condition is a parameterized SQL boolean expression.
type Condition struct {
	Clause string
	Params []any
}

// DonationQuery selects a page of donations visible to an actor.
type DonationQuery struct {
	Filter    Condition
	FilterKey string
	PageSize  int
	PageToken string
}

// DonationPage is one page of donations, newest first.
type DonationPage struct {
	Donations     []domain.Donation
	NextPageToken string
}

// Transition is a compare-and-swap on a donation's status.
type Transition struct {
	DonationID string
	From       domain.Status
	To         domain.Status
	// ActorID becomes shelter_id on accept and volunteer_id on complete.
	ActorID string
	At      time.Time
}

// DonationStore is the donation ledger.
type DonationStore interface {
	// InsertDonation stores a pending donation and returns its change event.
	InsertDonation(ctx context.Context, donation domain.Donation) (domain.ChangeEvent, error)
	// GetDonation loads one donation without read filtering.
	GetDonation(ctx context.Context, donationID string) (domain.Donation, error)
	// GetDonationForReader loads one donation only when actor may read it.
	GetDonationForReader(ctx context.Context, actor domain.Actor, donationID string) (domain.Donation, error)
	// ListDonationsForReader pages donations actor may read.
	ListDonationsForReader(ctx context.Context, actor domain.Actor, query DonationQuery) (DonationPage, error)
	// TransitionDonation applies t only if the stored status equals t.From.
	// It returns ErrStatusMismatch when another writer got there first.
	TransitionDonation(ctx context.Context, t Transition) (domain.ChangeEvent, error)
}

// ChangeFeed exposes committed donation writes in commit order.
type ChangeFeed interface {
	ListChangesAfter(ctx context.Context, afterSeq int64, limit int) ([]domain.ChangeEvent, error)
	LatestChangeSeq(ctx context.Context) (int64, error)
}

// ProfileStore persists identity profiles. Profiles are insert-only.
type ProfileStore interface {
	InsertProfile(ctx context.Context, profile domain.Profile) error
	GetProfile(ctx context.Context, profileID string) (domain.Profile, error)
	ListProfilesByRole(ctx context.Context, role domain.Role) ([]domain.Profile, error)
}

// NotificationRecord is one in-app inbox item.
type NotificationRecord struct {
	ID          string
	RecipientID string
	DonationID  string
	MessageType string
	Title       string
	Body        string
	DedupeKey   string
	CreatedAt   time.Time
	ReadAt      *time.Time
}

// InboxStore persists capped per-recipient inboxes.
type InboxStore interface {
	// PutNotification inserts record unless the recipient already has one with
	// the same dedupe key, then trims the inbox to InboxCap newest entries.
	PutNotification(ctx context.Context, record NotificationRecord) (inserted bool, err error)
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]NotificationRecord, error)
	CountUnreadNotifications(ctx context.Context, recipientID string) (int, error)
	MarkNotificationRead(ctx context.Context, recipientID string, notificationID string, readAt time.Time) (NotificationRecord, error)
}

// CursorStore checkpoints change feed consumers.
type CursorStore interface {
	GetCursor(ctx context.Context, consumer string) (int64, error)
	PutCursor(ctx context.Context, consumer string, seq int64) error
}
