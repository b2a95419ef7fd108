package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
)

// InboxPage is a recipient's notifications, newest first.
type InboxPage struct {
	Notifications []storage.NotificationRecord
	UnreadCount   int
}

// Inbox serves the in-app notification list.
type Inbox struct {
	store storage.InboxStore
	clock func() time.Time
}

// NewInbox constructs inbox use-cases.
func NewInbox(store storage.InboxStore, clock func() time.Time) *Inbox {
	if clock == nil {
		clock = time.Now
	}
	return &Inbox{store: store, clock: clock}
}

// List returns the recipient's retained notifications.
func (i *Inbox) List(ctx context.Context, recipientID string) (InboxPage, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return InboxPage{}, domain.ErrIdentityMissing()
	}
	records, err := i.store.ListNotifications(ctx, recipientID, storage.InboxCap)
	if err != nil {
		return InboxPage{}, inboxError("list notifications", err)
	}
	unread, err := i.store.CountUnreadNotifications(ctx, recipientID)
	if err != nil {
		return InboxPage{}, inboxError("count unread notifications", err)
	}
	return InboxPage{Notifications: records, UnreadCount: unread}, nil
}

// MarkRead marks one of the recipient's notifications read. Marking twice
// keeps the first read time.
func (i *Inbox) MarkRead(ctx context.Context, recipientID string, notificationID string) (storage.NotificationRecord, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return storage.NotificationRecord{}, domain.ErrIdentityMissing()
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return storage.NotificationRecord{}, domain.ErrNotificationMissing(notificationID)
	}
	record, err := i.store.MarkNotificationRead(ctx, recipientID, notificationID, i.clock().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.NotificationRecord{}, domain.ErrNotificationMissing(notificationID)
		}
		return storage.NotificationRecord{}, inboxError("mark notification read", err)
	}
	return record, nil
}

func inboxError(op string, err error) error {
	if errors.Is(err, storage.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrLedgerUnavailable(op, err)
	}
	return err
}
