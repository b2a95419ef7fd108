package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/foodshare/internal/platform/grpc/pagination"
	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/policy"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
)

const donationColumns = `id, donor_id, donor_name, food_category, quantity, pickup_address,
location_lat, location_lng, notes, status, shelter_id, volunteer_id,
created_at, accepted_at, completed_at, version`

// InsertDonation stores a new pending donation. The insert trigger appends
// the created change row in the same transaction.
func (s *Store) InsertDonation(ctx context.Context, d domain.Donation) (domain.ChangeEvent, error) {
	if err := s.ready(ctx); err != nil {
		return domain.ChangeEvent{}, err
	}
	if strings.TrimSpace(d.ID) == "" {
		return domain.ChangeEvent{}, fmt.Errorf("donation id is required")
	}
	var lat, lng sql.NullFloat64
	if d.Location != nil {
		lat = sql.NullFloat64{Float64: d.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: d.Location.Lng, Valid: true}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.ChangeEvent{}, classifyError("begin insert donation", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO donations (
    id, donor_id, donor_name, food_category, quantity, pickup_address,
    location_lat, location_lng, notes, status, created_at, version
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
`,
		d.ID, d.DonorID, d.DonorName, string(d.FoodCategory), d.Quantity, d.PickupAddress,
		lat, lng, d.Notes, string(d.Status), toMillis(d.CreatedAt),
	); err != nil {
		return domain.ChangeEvent{}, rollback(tx, classifyError("insert donation", err))
	}
	event, err := latestChange(ctx, tx, d.ID)
	if err != nil {
		return domain.ChangeEvent{}, rollback(tx, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.ChangeEvent{}, classifyError("commit insert donation", err)
	}
	return event, nil
}

// GetDonation loads one donation without read filtering.
func (s *Store) GetDonation(ctx context.Context, donationID string) (domain.Donation, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Donation{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = ?`, strings.TrimSpace(donationID))
	d, err := scanDonation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Donation{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Donation{}, classifyError("get donation", err)
	}
	return d, nil
}

// GetDonationForReader loads one donation when the row-level read predicate
// for actor admits it. Invisible rows report ErrNotFound.
func (s *Store) GetDonationForReader(ctx context.Context, actor domain.Actor, donationID string) (domain.Donation, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Donation{}, err
	}
	pred := policy.SQLReadPredicate(actor, "")
	args := append([]any{strings.TrimSpace(donationID)}, pred.Params...)
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = ? AND `+pred.Clause, args...)
	d, err := scanDonation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Donation{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Donation{}, classifyError("get donation for reader", err)
	}
	return d, nil
}

// ListDonationsForReader pages visible donations newest first.
func (s *Store) ListDonationsForReader(ctx context.Context, actor domain.Actor, query storage.DonationQuery) (storage.DonationPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.DonationPage{}, err
	}
	if query.PageSize <= 0 {
		return storage.DonationPage{}, fmt.Errorf("page size must be greater than zero")
	}
	cursor, err := pagination.DecodeToken(query.PageToken)
	if err != nil {
		return storage.DonationPage{}, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}
	if query.PageToken != "" && cursor.Filter != query.FilterKey {
		return storage.DonationPage{}, fmt.Errorf("%w: page token was issued for a different filter", storage.ErrInvalidArgument)
	}

	pred := policy.SQLReadPredicate(actor, "")
	where := []string{pred.Clause}
	args := append([]any{}, pred.Params...)
	if strings.TrimSpace(query.Filter.Clause) != "" {
		where = append(where, "("+query.Filter.Clause+")")
		args = append(args, query.Filter.Params...)
	}
	if query.PageToken != "" {
		where = append(where, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	args = append(args, query.PageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+donationColumns+`
FROM donations
WHERE `+strings.Join(where, " AND ")+`
ORDER BY created_at DESC, id DESC
LIMIT ?`, args...)
	if err != nil {
		return storage.DonationPage{}, classifyError("list donations", err)
	}
	defer rows.Close()

	page := storage.DonationPage{Donations: make([]domain.Donation, 0, query.PageSize)}
	for rows.Next() {
		d, err := scanDonation(rows.Scan)
		if err != nil {
			return storage.DonationPage{}, fmt.Errorf("scan donation row: %w", err)
		}
		page.Donations = append(page.Donations, d)
	}
	if err := rows.Err(); err != nil {
		return storage.DonationPage{}, classifyError("iterate donation rows", err)
	}
	if len(page.Donations) > query.PageSize {
		last := page.Donations[query.PageSize-1]
		page.NextPageToken = pagination.EncodeToken(pagination.Cursor{
			CreatedAt: toMillis(last.CreatedAt),
			ID:        last.ID,
			Filter:    query.FilterKey,
		})
		page.Donations = page.Donations[:query.PageSize]
	}
	return page, nil
}

// TransitionDonation applies a status compare-and-swap. Zero affected rows
// means the record is missing or another writer changed its status first.
func (s *Store) TransitionDonation(ctx context.Context, t storage.Transition) (domain.ChangeEvent, error) {
	if err := s.ready(ctx); err != nil {
		return domain.ChangeEvent{}, err
	}
	t.DonationID = strings.TrimSpace(t.DonationID)
	t.ActorID = strings.TrimSpace(t.ActorID)
	if t.DonationID == "" || t.ActorID == "" {
		return domain.ChangeEvent{}, fmt.Errorf("donation id and actor id are required")
	}

	var stmt string
	switch {
	case t.From == domain.StatusPending && t.To == domain.StatusAccepted:
		stmt = `UPDATE donations
SET status = ?, shelter_id = ?, accepted_at = ?, version = version + 1
WHERE id = ? AND status = ?`
	case t.From == domain.StatusAccepted && t.To == domain.StatusCompleted:
		stmt = `UPDATE donations
SET status = ?, volunteer_id = ?, completed_at = ?, version = version + 1
WHERE id = ? AND status = ?`
	default:
		return domain.ChangeEvent{}, fmt.Errorf("%w: unsupported transition %s -> %s", storage.ErrWriteDenied, t.From, t.To)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.ChangeEvent{}, classifyError("begin transition", err)
	}
	result, err := tx.ExecContext(ctx, stmt, string(t.To), t.ActorID, toMillis(t.At), t.DonationID, string(t.From))
	if err != nil {
		return domain.ChangeEvent{}, rollback(tx, classifyError("transition donation", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.ChangeEvent{}, rollback(tx, classifyError("transition rows affected", err))
	}
	if affected == 0 {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM donations WHERE id = ?`, t.DonationID).Scan(&current)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.ChangeEvent{}, rollback(tx, storage.ErrNotFound)
		case err != nil:
			return domain.ChangeEvent{}, rollback(tx, classifyError("transition status lookup", err))
		}
		return domain.ChangeEvent{}, rollback(tx, fmt.Errorf("%w: expected %s, found %s", storage.ErrStatusMismatch, t.From, current))
	}
	event, err := latestChange(ctx, tx, t.DonationID)
	if err != nil {
		return domain.ChangeEvent{}, rollback(tx, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.ChangeEvent{}, classifyError("commit transition", err)
	}
	return event, nil
}

func scanDonation(scan func(dest ...any) error) (domain.Donation, error) {
	var (
		d                       domain.Donation
		category, status        string
		lat, lng                sql.NullFloat64
		shelterID, volunteerID  sql.NullString
		createdAt               int64
		acceptedAt, completedAt sql.NullInt64
	)
	if err := scan(
		&d.ID, &d.DonorID, &d.DonorName, &category, &d.Quantity, &d.PickupAddress,
		&lat, &lng, &d.Notes, &status, &shelterID, &volunteerID,
		&createdAt, &acceptedAt, &completedAt, &d.Version,
	); err != nil {
		return domain.Donation{}, err
	}
	d.FoodCategory = domain.FoodCategory(category)
	d.Status = domain.Status(status)
	if lat.Valid && lng.Valid {
		d.Location = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	d.ShelterID = shelterID.String
	d.VolunteerID = volunteerID.String
	d.CreatedAt = fromMillis(createdAt)
	d.AcceptedAt = timePtr(acceptedAt)
	d.CompletedAt = timePtr(completedAt)
	return d, nil
}

// donationSnapshot mirrors the json_object written by the change-log triggers.
type donationSnapshot struct {
	ID            string   `json:"id"`
	DonorID       string   `json:"donor_id"`
	DonorName     string   `json:"donor_name"`
	FoodCategory  string   `json:"food_category"`
	Quantity      string   `json:"quantity"`
	PickupAddress string   `json:"pickup_address"`
	LocationLat   *float64 `json:"location_lat"`
	LocationLng   *float64 `json:"location_lng"`
	Notes         string   `json:"notes"`
	Status        string   `json:"status"`
	ShelterID     *string  `json:"shelter_id"`
	VolunteerID   *string  `json:"volunteer_id"`
	CreatedAt     int64    `json:"created_at"`
	AcceptedAt    *int64   `json:"accepted_at"`
	CompletedAt   *int64   `json:"completed_at"`
	Version       int64    `json:"version"`
}

func (s donationSnapshot) donation() domain.Donation {
	d := domain.Donation{
		ID:            s.ID,
		DonorID:       s.DonorID,
		DonorName:     s.DonorName,
		FoodCategory:  domain.FoodCategory(s.FoodCategory),
		Quantity:      s.Quantity,
		PickupAddress: s.PickupAddress,
		Notes:         s.Notes,
		Status:        domain.Status(s.Status),
		CreatedAt:     fromMillis(s.CreatedAt),
		Version:       s.Version,
	}
	if s.LocationLat != nil && s.LocationLng != nil {
		d.Location = &domain.Coordinates{Lat: *s.LocationLat, Lng: *s.LocationLng}
	}
	if s.ShelterID != nil {
		d.ShelterID = *s.ShelterID
	}
	if s.VolunteerID != nil {
		d.VolunteerID = *s.VolunteerID
	}
	if s.AcceptedAt != nil {
		t := fromMillis(*s.AcceptedAt)
		d.AcceptedAt = &t
	}
	if s.CompletedAt != nil {
		t := fromMillis(*s.CompletedAt)
		d.CompletedAt = &t
	}
	return d
}

func decodeSnapshot(raw string) (domain.Donation, error) {
	var snap donationSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return domain.Donation{}, fmt.Errorf("decode donation snapshot: %w", err)
	}
	return snap.donation(), nil
}
