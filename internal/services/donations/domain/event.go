package domain

import "time"

// ChangeKind distinguishes inserts from updates in the change feed.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
)

// ChangeEvent is one committed write to a donation, carrying the full record
// after the write. Seq orders events in the durable feed.
type ChangeEvent struct {
	Seq         int64
	Kind        ChangeKind
	Donation    Donation
	PriorStatus Status
	OccurredAt  time.Time
}

// Transitioned reports whether the event moved the donation into status.
func (e ChangeEvent) Transitioned(status Status) bool {
	return e.Kind == ChangeUpdated && e.Donation.Status == status && e.PriorStatus != status
}
