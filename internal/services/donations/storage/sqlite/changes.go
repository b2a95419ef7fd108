package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
)

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const changeColumns = `seq, kind, prior_status, snapshot_json, occurred_at`

// ListChangesAfter returns up to limit change events with seq > afterSeq in
// commit order.
func (s *Store) ListChangesAfter(ctx context.Context, afterSeq int64, limit int) ([]domain.ChangeEvent, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+changeColumns+`
FROM donation_changes
WHERE seq > ?
ORDER BY seq ASC
LIMIT ?`, afterSeq, limit)
	if err != nil {
		return nil, classifyError("list changes", err)
	}
	defer rows.Close()

	events := make([]domain.ChangeEvent, 0, limit)
	for rows.Next() {
		event, err := scanChange(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate changes", err)
	}
	return events, nil
}

// LatestChangeSeq returns the highest committed change sequence, or 0.
func (s *Store) LatestChangeSeq(ctx context.Context) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var seq sql.NullInt64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT MAX(seq) FROM donation_changes`).Scan(&seq); err != nil {
		return 0, classifyError("latest change seq", err)
	}
	return seq.Int64, nil
}

func latestChange(ctx context.Context, q querier, donationID string) (domain.ChangeEvent, error) {
	row := q.QueryRowContext(ctx, `
SELECT `+changeColumns+`
FROM donation_changes
WHERE donation_id = ?
ORDER BY seq DESC
LIMIT 1`, donationID)
	event, err := scanChange(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ChangeEvent{}, fmt.Errorf("change row missing for donation %s", donationID)
	}
	if err != nil {
		return domain.ChangeEvent{}, classifyError("load change", err)
	}
	return event, nil
}

func scanChange(scan func(dest ...any) error) (domain.ChangeEvent, error) {
	var (
		event      domain.ChangeEvent
		kind       string
		prior      string
		snapshot   string
		occurredAt int64
	)
	if err := scan(&event.Seq, &kind, &prior, &snapshot, &occurredAt); err != nil {
		return domain.ChangeEvent{}, err
	}
	donation, err := decodeSnapshot(snapshot)
	if err != nil {
		return domain.ChangeEvent{}, fmt.Errorf("change %d: %w", event.Seq, err)
	}
	event.Kind = domain.ChangeKind(kind)
	event.PriorStatus = domain.Status(prior)
	event.Donation = donation
	event.OccurredAt = fromMillis(occurredAt)
	return event, nil
}
