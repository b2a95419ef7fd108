package notify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/foodshare/internal/platform/errors"
	"github.com/louisbranch/foodshare/internal/services/donations/bus"
	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/render"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
	"github.com/louisbranch/foodshare/internal/services/donations/storage/sqlite"
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingChannel struct {
	mu         sync.Mutex
	fail       error
	attempts   int
	deliveries []Delivery
}

func (c *recordingChannel) Name() string { return "recording" }

func (c *recordingChannel) Deliver(_ context.Context, delivery Delivery) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	if c.fail != nil {
		return c.fail
	}
	c.deliveries = append(c.deliveries, delivery)
	return nil
}

func (c *recordingChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deliveries)
}

type fixture struct {
	t     *testing.T
	store *sqlite.Store
	bus   *bus.Bus
	clock *stepClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "donations.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	f := &fixture{t: t, store: store, bus: bus.New(store, bus.WithPollInterval(10*time.Millisecond)), clock: &stepClock{now: baseTime}}
	f.profile("donor-1", "Padaria Sol", domain.RoleDonor, "pt-BR")
	f.profile("shelter-1", "Casa Abrigo", domain.RoleShelter, "en")
	f.profile("shelter-2", "Lar Esperança", domain.RoleShelter, "en")
	f.profile("volunteer-1", "Ana", domain.RoleVolunteer, "en")
	return f
}

func (f *fixture) profile(id, name string, role domain.Role, locale string) {
	f.t.Helper()
	err := f.store.InsertProfile(context.Background(), domain.Profile{ID: id, DisplayName: name, Role: role, Locale: locale, CreatedAt: baseTime})
	if err != nil {
		f.t.Fatalf("insert profile %s: %v", id, err)
	}
}

func (f *fixture) dispatcher(channels ...Channel) *Dispatcher {
	return NewDispatcher(f.bus, f.store, f.store, f.store, channels, Config{
		RetryInitial: time.Millisecond,
		RetryMax:     5 * time.Millisecond,
		Clock:        f.clock.Now,
		Logf:         f.t.Logf,
	})
}

func (f *fixture) create(id string) domain.ChangeEvent {
	f.t.Helper()
	event, err := f.store.InsertDonation(context.Background(), domain.Donation{
		ID:            id,
		DonorID:       "donor-1",
		DonorName:     "Padaria Sol",
		FoodCategory:  domain.CategoryBakery,
		Quantity:      "20 loaves",
		PickupAddress: "Rua das Flores, 12",
		Status:        domain.StatusPending,
		CreatedAt:     f.clock.Now(),
	})
	if err != nil {
		f.t.Fatalf("insert donation: %v", err)
	}
	f.bus.Notify()
	return event
}

func (f *fixture) transition(id string, from, to domain.Status, actorID string) domain.ChangeEvent {
	f.t.Helper()
	event, err := f.store.TransitionDonation(context.Background(), storage.Transition{
		DonationID: id, From: from, To: to, ActorID: actorID, At: f.clock.Now(),
	})
	if err != nil {
		f.t.Fatalf("transition: %v", err)
	}
	f.bus.Notify()
	return event
}

func (f *fixture) inbox(recipientID string) []storage.NotificationRecord {
	f.t.Helper()
	records, err := f.store.ListNotifications(context.Background(), recipientID, storage.InboxCap)
	if err != nil {
		f.t.Fatalf("list notifications: %v", err)
	}
	return records
}

func TestCompose(t *testing.T) {
	t.Parallel()
	donation := domain.Donation{ID: "d1", DonorID: "donor-1", Status: domain.StatusPending}
	created := domain.ChangeEvent{Kind: domain.ChangeCreated, Donation: donation}
	accepted := domain.ChangeEvent{Kind: domain.ChangeUpdated, PriorStatus: domain.StatusPending, Donation: domain.Donation{ID: "d1", DonorID: "donor-1", Status: domain.StatusAccepted}}
	completed := domain.ChangeEvent{Kind: domain.ChangeUpdated, PriorStatus: domain.StatusAccepted, Donation: domain.Donation{ID: "d1", DonorID: "donor-1", Status: domain.StatusCompleted}}

	tests := []struct {
		name      string
		event     domain.ChangeEvent
		role      domain.Role
		recipient string
		want      string
	}{
		{"created to shelter", created, domain.RoleShelter, "shelter-1", render.TypeDonationAvailable},
		{"created to volunteer", created, domain.RoleVolunteer, "volunteer-1", ""},
		{"created to donor", created, domain.RoleDonor, "donor-1", ""},
		{"accepted to donor", accepted, domain.RoleDonor, "donor-1", render.TypeDonationAccepted},
		{"accepted to other donor", accepted, domain.RoleDonor, "donor-2", ""},
		{"accepted to volunteer", accepted, domain.RoleVolunteer, "volunteer-1", render.TypePickupAvailable},
		{"accepted to shelter", accepted, domain.RoleShelter, "shelter-1", ""},
		{"completed to donor", completed, domain.RoleDonor, "donor-1", render.TypeDonationCompleted},
		{"completed to volunteer", completed, domain.RoleVolunteer, "volunteer-1", ""},
		{"completed to shelter", completed, domain.RoleShelter, "shelter-1", ""},
	}
	for _, tc := range tests {
		got, ok := Compose(tc.event, tc.role, tc.recipient)
		if got != tc.want || ok != (tc.want != "") {
			t.Fatalf("%s: Compose = %q, %v, want %q", tc.name, got, ok, tc.want)
		}
	}
}

func TestHandleNotifiesEligibleRecipients(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	channel := &recordingChannel{}
	d := f.dispatcher(channel)
	ctx := context.Background()

	if err := d.Handle(ctx, f.create("don-1")); err != nil {
		t.Fatalf("handle created: %v", err)
	}
	for _, shelter := range []string{"shelter-1", "shelter-2"} {
		got := f.inbox(shelter)
		if len(got) != 1 || got[0].MessageType != render.TypeDonationAvailable {
			t.Fatalf("%s inbox = %+v, want one available notification", shelter, got)
		}
	}
	if got := f.inbox("volunteer-1"); len(got) != 0 {
		t.Fatalf("volunteer inbox = %d items, want 0", len(got))
	}

	if err := d.Handle(ctx, f.transition("don-1", domain.StatusPending, domain.StatusAccepted, "shelter-1")); err != nil {
		t.Fatalf("handle accepted: %v", err)
	}
	donorInbox := f.inbox("donor-1")
	if len(donorInbox) != 1 || donorInbox[0].MessageType != render.TypeDonationAccepted {
		t.Fatalf("donor inbox = %+v, want accepted notification", donorInbox)
	}
	if donorInbox[0].Body != "Casa Abrigo aceitou sua doação de padaria." {
		t.Fatalf("donor body = %q, want localized shelter name", donorInbox[0].Body)
	}
	if got := f.inbox("volunteer-1"); len(got) != 1 || got[0].MessageType != render.TypePickupAvailable {
		t.Fatalf("volunteer inbox = %+v, want pickup notification", got)
	}
	if got := f.inbox("shelter-2"); len(got) != 1 {
		t.Fatalf("shelter-2 inbox = %d items, want only the original offer", len(got))
	}
	if got := channel.count(); got != 4 {
		t.Fatalf("channel deliveries = %d, want 4", got)
	}
}

func TestCompletionNotifiesDonorExactlyOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	channel := &recordingChannel{}
	d := f.dispatcher(channel)
	ctx := context.Background()

	f.create("don-1")
	f.transition("don-1", domain.StatusPending, domain.StatusAccepted, "shelter-1")
	completed := f.transition("don-1", domain.StatusAccepted, domain.StatusCompleted, "volunteer-1")

	for range 3 {
		if err := d.Handle(ctx, completed); err != nil {
			t.Fatalf("handle completed: %v", err)
		}
	}
	var completions int
	for _, record := range f.inbox("donor-1") {
		if record.MessageType == render.TypeDonationCompleted {
			completions++
		}
	}
	if completions != 1 {
		t.Fatalf("completed notifications = %d, want 1", completions)
	}
	if got := channel.count(); got != 1 {
		t.Fatalf("channel deliveries = %d, want 1", got)
	}
	for _, other := range []string{"shelter-1", "shelter-2", "volunteer-1"} {
		if got := f.inbox(other); len(got) != 0 {
			t.Fatalf("%s inbox = %d items, want 0", other, len(got))
		}
	}
}

func TestConcurrentCompletesNotifyDonorOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	const volunteers = 4
	for i := range volunteers {
		f.profile(fmt.Sprintf("racer-%d", i), "racer", domain.RoleVolunteer, "en")
	}
	d := f.dispatcher()
	ctx := context.Background()

	f.create("don-1")
	f.transition("don-1", domain.StatusPending, domain.StatusAccepted, "shelter-1")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range volunteers {
		wg.Add(1)
		go func(volunteerID string) {
			defer wg.Done()
			_, err := f.store.TransitionDonation(ctx, storage.Transition{
				DonationID: "don-1", From: domain.StatusAccepted, To: domain.StatusCompleted,
				ActorID: volunteerID, At: baseTime.Add(time.Hour),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, storage.ErrStatusMismatch):
			default:
				t.Errorf("complete by %s: %v", volunteerID, err)
			}
		}(fmt.Sprintf("racer-%d", i))
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}

	changes, err := f.store.ListChangesAfter(ctx, 0, 100)
	if err != nil {
		t.Fatalf("list changes: %v", err)
	}
	for _, event := range changes {
		if err := d.Handle(ctx, event); err != nil {
			t.Fatalf("handle seq %d: %v", event.Seq, err)
		}
	}
	var completions int
	for _, record := range f.inbox("donor-1") {
		if record.MessageType == render.TypeDonationCompleted {
			completions++
		}
	}
	if completions != 1 {
		t.Fatalf("completed notifications = %d, want 1", completions)
	}
}

func TestInboxKeepsTenMostRecent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	d := f.dispatcher()
	for i := range 12 {
		if err := d.Handle(context.Background(), f.create(fmt.Sprintf("don-%02d", i))); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	got := f.inbox("shelter-1")
	if len(got) != storage.InboxCap {
		t.Fatalf("inbox size = %d, want %d", len(got), storage.InboxCap)
	}
	if got[0].DonationID != "don-11" || got[len(got)-1].DonationID != "don-02" {
		t.Fatalf("inbox spans %s..%s, want don-11..don-02", got[0].DonationID, got[len(got)-1].DonationID)
	}
}

func TestChannelFailuresAreDropped(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	channel := &recordingChannel{fail: errors.New("push gateway down")}
	d := f.dispatcher(channel)

	f.create("don-1")
	accepted := f.transition("don-1", domain.StatusPending, domain.StatusAccepted, "shelter-1")
	if err := d.Handle(context.Background(), accepted); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := f.inbox("donor-1"); len(got) != 1 {
		t.Fatalf("donor inbox = %d items, want 1", len(got))
	}
	channel.mu.Lock()
	attempts := channel.attempts
	channel.mu.Unlock()
	// donor and volunteer, three attempts each
	if attempts != 2*defaultDeliveryAttempts {
		t.Fatalf("attempts = %d, want %d", attempts, 2*defaultDeliveryAttempts)
	}
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	runUntil := func(wantItems int, wantCursor int64) {
		t.Helper()
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- f.dispatcher().Run(ctx) }()

		deadline := time.Now().Add(5 * time.Second)
		for {
			cursor, err := f.store.GetCursor(context.Background(), DefaultConsumer)
			if err != nil {
				cancel()
				t.Fatalf("get cursor: %v", err)
			}
			if len(f.inbox("shelter-1")) >= wantItems && cursor >= wantCursor {
				break
			}
			if time.Now().After(deadline) {
				cancel()
				t.Fatalf("dispatcher did not reach %d items at cursor %d", wantItems, wantCursor)
			}
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
		if err := <-done; err != nil {
			t.Fatalf("run: %v", err)
		}
	}

	first := f.create("don-1")
	runUntil(1, first.Seq)

	second := f.create("don-2")
	runUntil(2, second.Seq)
	if got := f.inbox("shelter-1"); len(got) != 2 {
		t.Fatalf("inbox = %d items, want 2 without duplicates", len(got))
	}
}

func TestInboxListAndMarkRead(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	d := f.dispatcher()
	for _, id := range []string{"don-1", "don-2"} {
		if err := d.Handle(context.Background(), f.create(id)); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	inbox := NewInbox(f.store, f.clock.Now)

	page, err := inbox.List(context.Background(), "shelter-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Notifications) != 2 || page.UnreadCount != 2 {
		t.Fatalf("page = %d items %d unread, want 2 and 2", len(page.Notifications), page.UnreadCount)
	}

	read, err := inbox.MarkRead(context.Background(), "shelter-1", page.Notifications[0].ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if read.ReadAt == nil {
		t.Fatal("read_at not set")
	}
	again, err := inbox.MarkRead(context.Background(), "shelter-1", page.Notifications[0].ID)
	if err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	if !again.ReadAt.Equal(*read.ReadAt) {
		t.Fatalf("read_at moved from %v to %v", read.ReadAt, again.ReadAt)
	}
	page, err = inbox.List(context.Background(), "shelter-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.UnreadCount != 1 {
		t.Fatalf("unread = %d, want 1", page.UnreadCount)
	}

	if _, err := inbox.MarkRead(context.Background(), "shelter-2", page.Notifications[0].ID); !apperrors.HasCode(err, apperrors.CodeNotificationMissing) {
		t.Fatalf("foreign mark read err = %v, want notification missing", err)
	}
	if _, err := inbox.List(context.Background(), " "); !apperrors.HasCode(err, apperrors.CodeIdentityMissing) {
		t.Fatalf("anonymous list err = %v, want identity missing", err)
	}
}
