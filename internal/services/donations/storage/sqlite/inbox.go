package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/foodshare/internal/services/donations/storage"
)

const notificationColumns = `id, recipient_id, donation_id, message_type, title, body, dedupe_key, created_at, read_at`

// PutNotification inserts one inbox row unless its dedupe key was seen for
// the recipient before, then trims the inbox to the newest storage.InboxCap
// rows. Rows stamped in the same millisecond order by insertion.
func (s *Store) PutNotification(ctx context.Context, record storage.NotificationRecord) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	record.ID = strings.TrimSpace(record.ID)
	record.RecipientID = strings.TrimSpace(record.RecipientID)
	record.DedupeKey = strings.TrimSpace(record.DedupeKey)
	if record.ID == "" || record.RecipientID == "" {
		return false, fmt.Errorf("notification id and recipient id are required")
	}
	if record.DedupeKey == "" {
		record.DedupeKey = "id:" + record.ID
	}
	if record.CreatedAt.IsZero() {
		return false, fmt.Errorf("created at is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return false, classifyError("begin put notification", err)
	}
	result, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO notification_receipts (recipient_id, dedupe_key, created_at)
VALUES (?, ?, ?)`, record.RecipientID, record.DedupeKey, toMillis(record.CreatedAt))
	if err != nil {
		return false, rollback(tx, classifyError("record notification receipt", err))
	}
	if affected, err := result.RowsAffected(); err != nil {
		return false, rollback(tx, classifyError("receipt rows affected", err))
	} else if affected == 0 {
		return false, rollback(tx, nil)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO notifications (`+notificationColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RecipientID, record.DonationID, record.MessageType,
		record.Title, record.Body, record.DedupeKey, toMillis(record.CreatedAt), nullMillis(record.ReadAt),
	); err != nil {
		return false, rollback(tx, classifyError("insert notification", err))
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM notifications
WHERE recipient_id = ?
  AND id NOT IN (
    SELECT id FROM notifications
    WHERE recipient_id = ?
    ORDER BY created_at DESC, rowid DESC
    LIMIT ?
  )`, record.RecipientID, record.RecipientID, storage.InboxCap); err != nil {
		return false, rollback(tx, classifyError("trim inbox", err))
	}
	if err := tx.Commit(); err != nil {
		return false, classifyError("commit put notification", err)
	}
	return true, nil
}

// ListNotifications lists one recipient inbox newest first.
func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit int) ([]storage.NotificationRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, fmt.Errorf("recipient id is required")
	}
	if limit <= 0 || limit > storage.InboxCap {
		limit = storage.InboxCap
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+notificationColumns+`
FROM notifications
WHERE recipient_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?`, recipientID, limit)
	if err != nil {
		return nil, classifyError("list notifications", err)
	}
	defer rows.Close()

	records := make([]storage.NotificationRecord, 0, limit)
	for rows.Next() {
		record, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate notifications", err)
	}
	return records, nil
}

// CountUnreadNotifications returns the unread inbox count for one recipient.
func (s *Store) CountUnreadNotifications(ctx context.Context, recipientID string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1) FROM notifications WHERE recipient_id = ? AND read_at IS NULL`,
		strings.TrimSpace(recipientID)).Scan(&count); err != nil {
		return 0, classifyError("count unread notifications", err)
	}
	return count, nil
}

// MarkNotificationRead marks one notification read. Already-read rows keep
// their original read time.
func (s *Store) MarkNotificationRead(ctx context.Context, recipientID string, notificationID string, readAt time.Time) (storage.NotificationRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.NotificationRecord{}, err
	}
	recipientID = strings.TrimSpace(recipientID)
	notificationID = strings.TrimSpace(notificationID)
	if recipientID == "" || notificationID == "" {
		return storage.NotificationRecord{}, fmt.Errorf("recipient id and notification id are required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
UPDATE notifications SET read_at = COALESCE(read_at, ?)
WHERE recipient_id = ? AND id = ?`, toMillis(readAt), recipientID, notificationID); err != nil {
		return storage.NotificationRecord{}, classifyError("mark notification read", err)
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE recipient_id = ? AND id = ?`, recipientID, notificationID)
	record, err := scanNotification(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NotificationRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.NotificationRecord{}, classifyError("get notification", err)
	}
	return record, nil
}

func scanNotification(scan func(dest ...any) error) (storage.NotificationRecord, error) {
	var (
		record    storage.NotificationRecord
		createdAt int64
		readAt    sql.NullInt64
	)
	if err := scan(
		&record.ID, &record.RecipientID, &record.DonationID, &record.MessageType,
		&record.Title, &record.Body, &record.DedupeKey, &createdAt, &readAt,
	); err != nil {
		return storage.NotificationRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.ReadAt = timePtr(readAt)
	return record, nil
}

// GetCursor returns the checkpointed sequence for consumer, or 0.
func (s *Store) GetCursor(ctx context.Context, consumer string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var seq int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT seq FROM feed_cursors WHERE consumer = ?`, consumer).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, classifyError("get cursor", err)
	}
	return seq, nil
}

// PutCursor advances the checkpoint for consumer. It never moves backwards.
func (s *Store) PutCursor(ctx context.Context, consumer string, seq int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(consumer) == "" {
		return fmt.Errorf("consumer is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO feed_cursors (consumer, seq, updated_at) VALUES (?, ?, ?)
ON CONFLICT(consumer) DO UPDATE SET
    seq = MAX(feed_cursors.seq, excluded.seq),
    updated_at = excluded.updated_at`, consumer, seq, toMillis(time.Now())); err != nil {
		return classifyError("put cursor", err)
	}
	return nil
}
