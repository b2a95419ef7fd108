package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "donations.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func seedProfile(t *testing.T, store *Store, id string, role domain.Role) domain.Profile {
	t.Helper()
	p := domain.Profile{ID: id, DisplayName: "name " + id, Role: role, Locale: "en", CreatedAt: baseTime}
	if err := store.InsertProfile(context.Background(), p); err != nil {
		t.Fatalf("insert profile %s: %v", id, err)
	}
	return p
}

func seedDonation(t *testing.T, store *Store, id, donorID string, createdAt time.Time) domain.ChangeEvent {
	t.Helper()
	event, err := store.InsertDonation(context.Background(), domain.Donation{
		ID:            id,
		DonorID:       donorID,
		DonorName:     "Padaria Sol",
		FoodCategory:  domain.CategoryBakery,
		Quantity:      "20 loaves",
		PickupAddress: "Rua das Flores, 12",
		Location:      &domain.Coordinates{Lat: -23.55, Lng: -46.63},
		Status:        domain.StatusPending,
		CreatedAt:     createdAt,
	})
	if err != nil {
		t.Fatalf("insert donation %s: %v", id, err)
	}
	return event
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenAppliesConnectionPragmas(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)

	var busyTimeout int
	if err := store.DB().QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatalf("read busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Fatalf("busy_timeout = %d, want 5000", busyTimeout)
	}
	var journalMode string
	if err := store.DB().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", journalMode)
	}
	var synchronous int
	if err := store.DB().QueryRow("PRAGMA synchronous").Scan(&synchronous); err != nil {
		t.Fatalf("read synchronous: %v", err)
	}
	if synchronous != 1 {
		t.Fatalf("synchronous = %d, want 1 (NORMAL)", synchronous)
	}
}

func TestInsertDonationRoundTrip(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	seedProfile(t, store, "donor-1", domain.RoleDonor)

	event := seedDonation(t, store, "don-1", "donor-1", baseTime)
	if event.Kind != domain.ChangeCreated || event.Seq <= 0 {
		t.Fatalf("event = %+v, want created with seq", event)
	}
	got, err := store.GetDonation(context.Background(), "don-1")
	if err != nil {
		t.Fatalf("get donation: %v", err)
	}
	if got.Status != domain.StatusPending || got.ShelterID != "" || got.AcceptedAt != nil {
		t.Fatalf("donation = %+v, want fresh pending", got)
	}
	if got.Location == nil || got.Location.Lat != -23.55 {
		t.Fatalf("location = %+v", got.Location)
	}
	if !got.CreatedAt.Equal(baseTime) || got.Version != 1 {
		t.Fatalf("created_at = %v version = %d", got.CreatedAt, got.Version)
	}
	if event.Donation.ID != got.ID || event.Donation.Quantity != got.Quantity || event.Donation.Location == nil {
		t.Fatalf("snapshot = %+v, want %+v", event.Donation, got)
	}
	if _, err := store.GetDonation(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
}

func TestInsertDonationRequiresDonorProfile(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	seedProfile(t, store, "shelter-1", domain.RoleShelter)

	_, err := store.InsertDonation(context.Background(), domain.Donation{
		ID: "don-x", DonorID: "shelter-1", FoodCategory: domain.CategoryDairy,
		Quantity: "1", PickupAddress: "a", Status: domain.StatusPending, CreatedAt: baseTime,
	})
	if !errors.Is(err, storage.ErrWriteDenied) {
		t.Fatalf("insert by shelter = %v, want ErrWriteDenied", err)
	}
}

func TestTransitionDonationCompareAndSwap(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	seedProfile(t, store, "donor-1", domain.RoleDonor)
	seedProfile(t, store, "shelter-1", domain.RoleShelter)
	seedProfile(t, store, "vol-1", domain.RoleVolunteer)
	seedDonation(t, store, "don-1", "donor-1", baseTime)
	ctx := context.Background()

	accepted, err := store.TransitionDonation(ctx, storage.Transition{
		DonationID: "don-1", From: domain.StatusPending, To: domain.StatusAccepted,
		ActorID: "shelter-1", At: baseTime.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Kind != domain.ChangeUpdated || accepted.PriorStatus != domain.StatusPending {
		t.Fatalf("accept event = %+v", accepted)
	}
	if accepted.Donation.ShelterID != "shelter-1" || accepted.Donation.AcceptedAt == nil || accepted.Donation.Version != 2 {
		t.Fatalf("accepted snapshot = %+v", accepted.Donation)
	}

	_, err = store.TransitionDonation(ctx, storage.Transition{
		DonationID: "don-1", From: domain.StatusPending, To: domain.StatusAccepted,
		ActorID: "shelter-1", At: baseTime.Add(2 * time.Minute),
	})
	if !errors.Is(err, storage.ErrStatusMismatch) {
		t.Fatalf("second accept = %v, want ErrStatusMismatch", err)
	}

	completed, err := store.TransitionDonation(ctx, storage.Transition{
		DonationID: "don-1", From: domain.StatusAccepted, To: domain.StatusCompleted,
		ActorID: "vol-1", At: baseTime.Add(3 * time.Minute),
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	d := completed.Donation
	if d.Status != domain.StatusCompleted || d.VolunteerID != "vol-1" || d.CompletedAt == nil || d.ShelterID != "shelter-1" {
		t.Fatalf("completed snapshot = %+v", d)
	}
	if err := d.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}

	_, err = store.TransitionDonation(ctx, storage.Transition{
		DonationID: "nope", From: domain.StatusPending, To: domain.StatusAccepted, ActorID: "shelter-1", At: baseTime,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing transition = %v, want ErrNotFound", err)
	}
}

func TestTransitionDonationRejectsWrongRole(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	seedProfile(t, store, "donor-1", domain.RoleDonor)
	seedProfile(t, store, "vol-1", domain.RoleVolunteer)
	seedDonation(t, store, "don-1", "donor-1", baseTime)

	_, err := store.TransitionDonation(context.Background(), storage.Transition{
		DonationID: "don-1", From: domain.StatusPending, To: domain.StatusAccepted,
		ActorID: "vol-1", At: baseTime,
	})
	if !errors.Is(err, storage.ErrWriteDenied) {
		t.Fatalf("volunteer accept = %v, want ErrWriteDenied", err)
	}
	got, err := store.GetDonation(context.Background(), "don-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
}

func TestConcurrentTransitionsHaveOneWinner(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	seedProfile(t, store, "donor-1", domain.RoleDonor)
	const shelters = 8
	for i := range shelters {
		seedProfile(t, store, fmt.Sprintf("shelter-%d", i), domain.RoleShelter)
	}
	seedDonation(t, store, "don-1", "donor-1", baseTime)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts int
	)
	for i := range shelters {
		wg.Add(1)
		go func(shelterID string) {
			defer wg.Done()
			_, err := store.TransitionDonation(context.Background(), storage.Transition{
				DonationID: "don-1", From: domain.StatusPending, To: domain.StatusAccepted,
				ActorID: shelterID, At: baseTime.Add(time.Minute),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, shelterID)
			case errors.Is(err, storage.ErrStatusMismatch):
				conflicts++
			default:
				t.Errorf("accept by %s: %v", shelterID, err)
			}
		}(fmt.Sprintf("shelter-%d", i))
	}
	wg.Wait()

	if len(winners) != 1 || conflicts != shelters-1 {
		t.Fatalf("winners = %v conflicts = %d, want one winner", winners, conflicts)
	}
	got, err := store.GetDonation(context.Background(), "don-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ShelterID != winners[0] {
		t.Fatalf("shelter_id = %s, want %s", got.ShelterID, winners[0])
	}
}

func TestConcurrentCompletesHaveOneWinner(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	seedProfile(t, store, "donor-1", domain.RoleDonor)
	seedProfile(t, store, "shelter-1", domain.RoleShelter)
	const volunteers = 8
	for i := range volunteers {
		seedProfile(t, store, fmt.Sprintf("volunteer-%d", i), domain.RoleVolunteer)
	}
	seedDonation(t, store, "don-1", "donor-1", baseTime)
	if _, err := store.TransitionDonation(context.Background(), storage.Transition{
		DonationID: "don-1", From: domain.StatusPending, To: domain.StatusAccepted,
		ActorID: "shelter-1", At: baseTime.Add(time.Minute),
	}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []string
		conflicts int
	)
	for i := range volunteers {
		wg.Add(1)
		go func(volunteerID string) {
			defer wg.Done()
			_, err := store.TransitionDonation(context.Background(), storage.Transition{
				DonationID: "don-1", From: domain.StatusAccepted, To: domain.StatusCompleted,
				ActorID: volunteerID, At: baseTime.Add(2 * time.Minute),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, volunteerID)
			case errors.Is(err, storage.ErrStatusMismatch):
				conflicts++
			default:
				t.Errorf("complete by %s: %v", volunteerID, err)
			}
		}(fmt.Sprintf("volunteer-%d", i))
	}
	wg.Wait()

	if len(winners) != 1 || conflicts != volunteers-1 {
		t.Fatalf("winners = %v conflicts = %d, want one winner", winners, conflicts)
	}
	got, err := store.GetDonation(context.Background(), "don-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.VolunteerID != winners[0] {
		t.Fatalf("donation = %+v, want completed by %s", got, winners[0])
	}
}

func TestSchemaRejectsBypassWrites(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	seedProfile(t, store, "donor-1", domain.RoleDonor)
	seedProfile(t, store, "shelter-1", domain.RoleShelter)
	seedProfile(t, store, "vol-1", domain.RoleVolunteer)
	seedDonation(t, store, "don-1", "donor-1", baseTime)
	db := store.DB()
	now := toMillis(baseTime.Add(time.Hour))

	bypass := []struct {
		name string
		stmt string
		args []any
	}{
		{"skip to completed", `UPDATE donations SET status = 'completed', shelter_id = ?, accepted_at = ?, volunteer_id = ?, completed_at = ?, version = version + 1 WHERE id = 'don-1'`, []any{"shelter-1", now, "vol-1", now}},
		{"accept without shelter", `UPDATE donations SET status = 'accepted', version = version + 1 WHERE id = 'don-1'`, nil},
		{"accept by donor profile", `UPDATE donations SET status = 'accepted', shelter_id = 'donor-1', accepted_at = ?, version = version + 1 WHERE id = 'don-1'`, []any{now}},
		{"rewrite donor", `UPDATE donations SET donor_id = 'shelter-1' WHERE id = 'don-1'`, nil},
		{"rewrite created_at", `UPDATE donations SET created_at = 1, version = version + 1 WHERE id = 'don-1'`, nil},
		{"edit quantity", `UPDATE donations SET quantity = '1 crumb', version = version + 1 WHERE id = 'don-1'`, nil},
		{"delete", `DELETE FROM donations WHERE id = 'don-1'`, nil},
		{"insert accepted", `INSERT INTO donations (id, donor_id, food_category, quantity, pickup_address, status, shelter_id, created_at, accepted_at, version) VALUES ('don-2', 'donor-1', 'dairy', '1', 'a', 'accepted', 'shelter-1', ?, ?, 1)`, []any{now, now}},
		{"cancel", `UPDATE donations SET status = 'cancelled', version = version + 1 WHERE id = 'don-1'`, nil},
		{"rewrite change log", `UPDATE donation_changes SET kind = 'updated'`, nil},
		{"change profile role", `UPDATE profiles SET role = 'shelter' WHERE id = 'donor-1'`, nil},
	}
	for _, tc := range bypass {
		_, err := db.Exec(tc.stmt, tc.args...)
		if err == nil {
			t.Fatalf("%s: expected storage policy to reject write", tc.name)
		}
	}

	// A legal transition through raw SQL is still accepted and logged.
	if _, err := db.Exec(`UPDATE donations SET status = 'accepted', shelter_id = 'shelter-1', accepted_at = ?, version = version + 1 WHERE id = 'don-1' AND status = 'pending'`, now); err != nil {
		t.Fatalf("legal raw transition: %v", err)
	}
	changes, err := store.ListChangesAfter(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	if len(changes) != 2 || changes[1].Donation.Status != domain.StatusAccepted {
		t.Fatalf("changes = %+v, want created then accepted", changes)
	}
}

func TestReaderVisibility(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()
	seedProfile(t, store, "donor-1", domain.RoleDonor)
	seedProfile(t, store, "donor-2", domain.RoleDonor)
	seedProfile(t, store, "shelter-1", domain.RoleShelter)
	seedProfile(t, store, "shelter-2", domain.RoleShelter)
	seedProfile(t, store, "vol-1", domain.RoleVolunteer)
	seedDonation(t, store, "don-1", "donor-1", baseTime)
	seedDonation(t, store, "don-2", "donor-1", baseTime.Add(time.Second))
	if _, err := store.TransitionDonation(ctx, storage.Transition{
		DonationID: "don-1", From: domain.StatusPending, To: domain.StatusAccepted, ActorID: "shelter-1", At: baseTime.Add(time.Minute),
	}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	tests := []struct {
		actor domain.Actor
		want  []string
	}{
		{domain.Actor{ID: "donor-1", Role: domain.RoleDonor}, []string{"don-2", "don-1"}},
		{domain.Actor{ID: "donor-2", Role: domain.RoleDonor}, []string{"don-2"}},
		{domain.Actor{ID: "shelter-1", Role: domain.RoleShelter}, []string{"don-2", "don-1"}},
		{domain.Actor{ID: "shelter-2", Role: domain.RoleShelter}, []string{"don-2"}},
		{domain.Actor{ID: "vol-1", Role: domain.RoleVolunteer}, []string{"don-2", "don-1"}},
	}
	for _, tc := range tests {
		page, err := store.ListDonationsForReader(ctx, tc.actor, storage.DonationQuery{PageSize: 10})
		if err != nil {
			t.Fatalf("list for %s: %v", tc.actor.ID, err)
		}
		var got []string
		for _, d := range page.Donations {
			got = append(got, d.ID)
		}
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Fatalf("visible to %s = %v, want %v", tc.actor.ID, got, tc.want)
		}
	}

	if _, err := store.GetDonationForReader(ctx, domain.Actor{ID: "shelter-2", Role: domain.RoleShelter}, "don-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("shelter-2 read = %v, want ErrNotFound", err)
	}
	if _, err := store.GetDonationForReader(ctx, domain.Actor{ID: "shelter-1", Role: domain.RoleShelter}, "don-1"); err != nil {
		t.Fatalf("shelter-1 read: %v", err)
	}
}

func TestListDonationsPaginatesWithFilter(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()
	seedProfile(t, store, "donor-1", domain.RoleDonor)
	for i := range 5 {
		seedDonation(t, store, fmt.Sprintf("don-%d", i), "donor-1", baseTime.Add(time.Duration(i)*time.Second))
	}
	actor := domain.Actor{ID: "donor-1", Role: domain.RoleDonor}
	query := storage.DonationQuery{
		Filter:    storage.Condition{Clause: "created_at >= ?", Params: []any{toMillis(baseTime.Add(time.Second))}},
		FilterKey: "recent",
		PageSize:  2,
	}

	var ids []string
	for {
		page, err := store.ListDonationsForReader(ctx, actor, query)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, d := range page.Donations {
			ids = append(ids, d.ID)
		}
		if page.NextPageToken == "" {
			break
		}
		query.PageToken = page.NextPageToken
	}
	if fmt.Sprint(ids) != "[don-4 don-3 don-2 don-1]" {
		t.Fatalf("ids = %v", ids)
	}

	query.FilterKey = "other"
	query.PageToken = "eyJjIjoxLCJpIjoieCIsImYiOiJyZWNlbnQifQ"
	if _, err := store.ListDonationsForReader(ctx, actor, query); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Fatalf("mismatched token = %v, want ErrInvalidArgument", err)
	}
}

func TestChangeFeedOrdering(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()
	seedProfile(t, store, "donor-1", domain.RoleDonor)
	seedProfile(t, store, "shelter-1", domain.RoleShelter)

	if seq, err := store.LatestChangeSeq(ctx); err != nil || seq != 0 {
		t.Fatalf("latest on empty = %d, %v", seq, err)
	}
	first := seedDonation(t, store, "don-1", "donor-1", baseTime)
	second := seedDonation(t, store, "don-2", "donor-1", baseTime)
	third, err := store.TransitionDonation(ctx, storage.Transition{
		DonationID: "don-1", From: domain.StatusPending, To: domain.StatusAccepted, ActorID: "shelter-1", At: baseTime.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !(first.Seq < second.Seq && second.Seq < third.Seq) {
		t.Fatalf("seqs = %d %d %d, want increasing", first.Seq, second.Seq, third.Seq)
	}

	after, err := store.ListChangesAfter(ctx, first.Seq, 10)
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(after) != 2 || after[0].Seq != second.Seq || after[1].Seq != third.Seq {
		t.Fatalf("after = %+v", after)
	}
	if !after[1].OccurredAt.Equal(baseTime.Add(time.Minute)) {
		t.Fatalf("occurred_at = %v", after[1].OccurredAt)
	}
	if latest, _ := store.LatestChangeSeq(ctx); latest != third.Seq {
		t.Fatalf("latest = %d, want %d", latest, third.Seq)
	}
}

func TestProfilesAreInsertOnly(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()
	seedProfile(t, store, "u-1", domain.RoleShelter)
	seedProfile(t, store, "u-2", domain.RoleShelter)
	seedProfile(t, store, "u-3", domain.RoleVolunteer)

	err := store.InsertProfile(ctx, domain.Profile{ID: "u-1", DisplayName: "again", Role: domain.RoleDonor, CreatedAt: baseTime})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("reinsert = %v, want ErrAlreadyExists", err)
	}
	shelters, err := store.ListProfilesByRole(ctx, domain.RoleShelter)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(shelters) != 2 {
		t.Fatalf("shelters = %d, want 2", len(shelters))
	}
	if _, err := store.GetProfile(ctx, "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get ghost = %v, want ErrNotFound", err)
	}
}

func TestInboxCapAndDedupe(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	for i := range 12 {
		inserted, err := store.PutNotification(ctx, storage.NotificationRecord{
			ID:          fmt.Sprintf("n-%02d", i),
			RecipientID: "donor-1",
			MessageType: "donation.accepted",
			Title:       "Your donation was accepted",
			DedupeKey:   fmt.Sprintf("d-%d:accepted", i),
			CreatedAt:   baseTime.Add(time.Duration(i) * time.Second),
		})
		if err != nil || !inserted {
			t.Fatalf("put %d = %v, %v", i, inserted, err)
		}
	}
	inserted, err := store.PutNotification(ctx, storage.NotificationRecord{
		ID: "n-dup", RecipientID: "donor-1", DedupeKey: "d-0:accepted", CreatedAt: baseTime.Add(time.Hour),
	})
	if err != nil || inserted {
		t.Fatalf("duplicate put = %v, %v, want skipped", inserted, err)
	}

	records, err := store.ListNotifications(ctx, "donor-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != storage.InboxCap {
		t.Fatalf("inbox size = %d, want %d", len(records), storage.InboxCap)
	}
	if records[0].ID != "n-11" || records[len(records)-1].ID != "n-02" {
		t.Fatalf("inbox = %s..%s, want n-11..n-02", records[0].ID, records[len(records)-1].ID)
	}

	unread, err := store.CountUnreadNotifications(ctx, "donor-1")
	if err != nil || unread != 10 {
		t.Fatalf("unread = %d, %v", unread, err)
	}
	readAt := baseTime.Add(2 * time.Hour)
	record, err := store.MarkNotificationRead(ctx, "donor-1", "n-11", readAt)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if record.ReadAt == nil || !record.ReadAt.Equal(readAt) {
		t.Fatalf("read_at = %v", record.ReadAt)
	}
	if _, err := store.MarkNotificationRead(ctx, "someone-else", "n-11", readAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign mark read = %v, want ErrNotFound", err)
	}
	if unread, _ := store.CountUnreadNotifications(ctx, "donor-1"); unread != 9 {
		t.Fatalf("unread after mark = %d, want 9", unread)
	}
}

func TestInboxTrimKeepsNewestOnTimestampTies(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	// Later inserts get ids that sort lower, so id order disagrees with insertion order.
	total := storage.InboxCap + 3
	for i := range total {
		inserted, err := store.PutNotification(ctx, storage.NotificationRecord{
			ID:          fmt.Sprintf("n-%02d", 99-i),
			RecipientID: "donor-1",
			MessageType: "donation.accepted",
			DedupeKey:   fmt.Sprintf("d-%d:accepted", i),
			CreatedAt:   baseTime,
		})
		if err != nil || !inserted {
			t.Fatalf("put %d = %v, %v", i, inserted, err)
		}
	}

	records, err := store.ListNotifications(ctx, "donor-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != storage.InboxCap {
		t.Fatalf("inbox size = %d, want %d", len(records), storage.InboxCap)
	}
	for i, record := range records {
		want := fmt.Sprintf("n-%02d", 99-(total-1-i))
		if record.ID != want {
			t.Fatalf("records[%d] = %s, want %s", i, record.ID, want)
		}
	}
}

func TestCursorNeverMovesBackwards(t *testing.T) {
	t.Parallel()
	store := openTempStore(t)
	ctx := context.Background()

	if seq, err := store.GetCursor(ctx, "dispatcher"); err != nil || seq != 0 {
		t.Fatalf("initial cursor = %d, %v", seq, err)
	}
	for _, seq := range []int64{5, 3, 9} {
		if err := store.PutCursor(ctx, "dispatcher", seq); err != nil {
			t.Fatalf("put cursor %d: %v", seq, err)
		}
	}
	if seq, _ := store.GetCursor(ctx, "dispatcher"); seq != 9 {
		t.Fatalf("cursor = %d, want 9", seq)
	}
}
