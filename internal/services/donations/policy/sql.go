package policy

import "github.com/louisbranch/foodshare/internal/services/donations/domain"

// ReadPredicate is a SQL boolean expression over the donations table that
// mirrors CanRead for actor. Column names are qualified by alias.
type ReadPredicate struct {
	Clause string
	Params []any
}

// SQLReadPredicate builds the row-level read predicate for actor. An actor
// without identity sees nothing.
func SQLReadPredicate(actor domain.Actor, alias string) ReadPredicate {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}
	if actor.ID == "" {
		return ReadPredicate{Clause: "0"}
	}
	base := "(" + col("donor_id") + " = ? OR " + col("status") + " = 'pending'"
	params := []any{actor.ID}
	switch actor.Role {
	case domain.RoleShelter:
		base += " OR " + col("shelter_id") + " = ?"
		params = append(params, actor.ID)
	case domain.RoleVolunteer:
		base += " OR " + col("status") + " IN ('accepted', 'completed')"
	}
	return ReadPredicate{Clause: base + ")", Params: params}
}
