// Package notify turns donation change events into per-recipient
// notifications: a capped in-app inbox entry plus an optional hand-off to an
// external channel.
package notify

import (
	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/render"
)

// Compose returns the message type recipient should get for event, or false
// when the event means nothing to them. It is pure.
func Compose(event domain.ChangeEvent, role domain.Role, recipientID string) (string, bool) {
	d := event.Donation
	switch {
	case event.Kind == domain.ChangeCreated && role == domain.RoleShelter:
		return render.TypeDonationAvailable, true
	case event.Transitioned(domain.StatusAccepted) && recipientID != "" && recipientID == d.DonorID:
		return render.TypeDonationAccepted, true
	case event.Transitioned(domain.StatusAccepted) && role == domain.RoleVolunteer:
		return render.TypePickupAvailable, true
	case event.Transitioned(domain.StatusCompleted) && recipientID != "" && recipientID == d.DonorID:
		return render.TypeDonationCompleted, true
	}
	return "", false
}

// DedupeKey identifies one notification per donation state and recipient, so
// redelivered events do not notify twice.
func DedupeKey(event domain.ChangeEvent, recipientID string) string {
	return event.Donation.ID + ":" + string(event.Donation.Status) + ":" + recipientID
}
