// Package policy decides whether an actor may read or transition a donation.
// The functions are pure; the storage layer enforces the same rules
// independently through SQL predicates and triggers.
package policy

import "github.com/louisbranch/foodshare/internal/services/donations/domain"

// Operation is an action an actor attempts on a donation.
type Operation string

const (
	OpRead     Operation = "read"
	OpAccept   Operation = "accept"
	OpComplete Operation = "complete"
)

// Allow reports whether actor may perform op on donation.
func Allow(actor domain.Actor, donation domain.Donation, op Operation) bool {
	if actor.ID == "" {
		return false
	}
	switch op {
	case OpRead:
		return CanRead(actor, donation)
	case OpAccept:
		return actor.Role == domain.RoleShelter && donation.Status == domain.StatusPending
	case OpComplete:
		return actor.Role == domain.RoleVolunteer && donation.Status == domain.StatusAccepted
	default:
		return false
	}
}

// CanRead reports row-level read visibility.
func CanRead(actor domain.Actor, donation domain.Donation) bool {
	if actor.ID == "" {
		return false
	}
	if donation.DonorID == actor.ID {
		return true
	}
	if donation.Status == domain.StatusPending {
		return true
	}
	switch actor.Role {
	case domain.RoleShelter:
		return donation.ShelterID == actor.ID
	case domain.RoleVolunteer:
		return donation.Status == domain.StatusAccepted || donation.Status == domain.StatusCompleted
	}
	return false
}

// Deny explains why op is not allowed, for error messages. It returns "" when
// Allow would succeed.
func Deny(actor domain.Actor, donation domain.Donation, op Operation) string {
	if Allow(actor, donation, op) {
		return ""
	}
	switch op {
	case OpAccept:
		if actor.Role != domain.RoleShelter {
			return "only shelters accept donations"
		}
		return "donation is " + string(donation.Status)
	case OpComplete:
		if actor.Role != domain.RoleVolunteer {
			return "only volunteers complete donations"
		}
		return "donation is " + string(donation.Status)
	}
	return "not visible"
}
