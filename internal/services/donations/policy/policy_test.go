package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
)

func TestAllow(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	donor := domain.Actor{ID: "donor-1", Role: domain.RoleDonor}
	otherDonor := domain.Actor{ID: "donor-2", Role: domain.RoleDonor}
	s1 := domain.Actor{ID: "shelter-1", Role: domain.RoleShelter}
	s2 := domain.Actor{ID: "shelter-2", Role: domain.RoleShelter}
	vol := domain.Actor{ID: "vol-1", Role: domain.RoleVolunteer}

	pending := domain.Donation{ID: "d", DonorID: donor.ID, Status: domain.StatusPending}
	accepted := domain.Donation{ID: "d", DonorID: donor.ID, Status: domain.StatusAccepted, ShelterID: s1.ID, AcceptedAt: &now}
	completed := accepted
	completed.Status = domain.StatusCompleted
	completed.VolunteerID = vol.ID
	completed.CompletedAt = &now

	tests := []struct {
		name     string
		actor    domain.Actor
		donation domain.Donation
		op       Operation
		want     bool
	}{
		{"donor reads own pending", donor, pending, OpRead, true},
		{"donor reads own completed", donor, completed, OpRead, true},
		{"anyone reads pending", otherDonor, pending, OpRead, true},
		{"other donor cannot read accepted", otherDonor, accepted, OpRead, false},
		{"bound shelter reads accepted", s1, accepted, OpRead, true},
		{"other shelter cannot read accepted", s2, accepted, OpRead, false},
		{"other shelter cannot read completed", s2, completed, OpRead, false},
		{"volunteer reads accepted", vol, accepted, OpRead, true},
		{"volunteer reads completed", vol, completed, OpRead, true},
		{"shelter accepts pending", s2, pending, OpAccept, true},
		{"shelter cannot accept accepted", s2, accepted, OpAccept, false},
		{"donor cannot accept", donor, pending, OpAccept, false},
		{"volunteer cannot accept", vol, pending, OpAccept, false},
		{"volunteer completes accepted", vol, accepted, OpComplete, true},
		{"volunteer cannot complete pending", vol, pending, OpComplete, false},
		{"volunteer cannot complete completed", vol, completed, OpComplete, false},
		{"shelter cannot complete", s1, accepted, OpComplete, false},
		{"anonymous denied", domain.Actor{}, pending, OpRead, false},
		{"unknown op denied", donor, pending, Operation("cancel"), false},
	}
	for _, tc := range tests {
		if got := Allow(tc.actor, tc.donation, tc.op); got != tc.want {
			t.Fatalf("%s: Allow = %v, want %v", tc.name, got, tc.want)
		}
		if reason := Deny(tc.actor, tc.donation, tc.op); (reason == "") != tc.want {
			t.Fatalf("%s: Deny = %q, allow %v", tc.name, reason, tc.want)
		}
	}
}

func TestSQLReadPredicate(t *testing.T) {
	t.Parallel()

	shelter := SQLReadPredicate(domain.Actor{ID: "s1", Role: domain.RoleShelter}, "d")
	if !strings.Contains(shelter.Clause, "d.shelter_id = ?") || len(shelter.Params) != 2 {
		t.Fatalf("shelter predicate = %+v", shelter)
	}
	volunteer := SQLReadPredicate(domain.Actor{ID: "v1", Role: domain.RoleVolunteer}, "")
	if !strings.Contains(volunteer.Clause, "status IN ('accepted', 'completed')") || len(volunteer.Params) != 1 {
		t.Fatalf("volunteer predicate = %+v", volunteer)
	}
	if anon := SQLReadPredicate(domain.Actor{}, "d"); anon.Clause != "0" {
		t.Fatalf("anonymous predicate = %q, want 0", anon.Clause)
	}
}
