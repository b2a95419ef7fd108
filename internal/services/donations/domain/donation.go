// Package domain defines the donation lifecycle model shared by every
// donations component: records, roles, statuses, change events, and the
// typed errors returned to callers.
package domain

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a donation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	// StatusCancelled is reserved by the schema. No operation produces it.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Role is the single, immutable role bound to a profile.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleShelter   Role = "shelter"
	RoleVolunteer Role = "volunteer"
)

// ParseRole normalizes a role label. The zero value is returned for unknown
// labels.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleDonor:
		return RoleDonor, true
	case RoleShelter:
		return RoleShelter, true
	case RoleVolunteer:
		return RoleVolunteer, true
	}
	return "", false
}

// FoodCategory classifies donated food.
type FoodCategory string

const (
	CategoryProduce  FoodCategory = "produce"
	CategoryBakery   FoodCategory = "bakery"
	CategoryDairy    FoodCategory = "dairy"
	CategoryMeat     FoodCategory = "meat"
	CategoryPrepared FoodCategory = "prepared"
	CategoryPackaged FoodCategory = "packaged"
	CategoryOther    FoodCategory = "other"
)

// FoodCategories lists every accepted category in display order.
func FoodCategories() []FoodCategory {
	return []FoodCategory{
		CategoryProduce,
		CategoryBakery,
		CategoryDairy,
		CategoryMeat,
		CategoryPrepared,
		CategoryPackaged,
		CategoryOther,
	}
}

// ParseFoodCategory normalizes a category label.
func ParseFoodCategory(value string) (FoodCategory, bool) {
	candidate := FoodCategory(strings.ToLower(strings.TrimSpace(value)))
	for _, category := range FoodCategories() {
		if category == candidate {
			return category, true
		}
	}
	return "", false
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Donation is one offer of food moving through pending, accepted, completed.
type Donation struct {
	ID            string
	DonorID       string
	DonorName     string
	FoodCategory  FoodCategory
	Quantity      string
	PickupAddress string
	Location      *Coordinates
	Notes         string
	Status        Status
	ShelterID     string
	VolunteerID   string
	CreatedAt     time.Time
	AcceptedAt    *time.Time
	CompletedAt   *time.Time
	// Version increments on every committed write.
	Version int64
}

// CheckInvariants reports the first violated record invariant, if any.
func (d Donation) CheckInvariants() error {
	switch d.Status {
	case StatusPending:
		if d.ShelterID != "" || d.AcceptedAt != nil {
			return errInvariant("pending donation has a shelter binding")
		}
		if d.VolunteerID != "" || d.CompletedAt != nil {
			return errInvariant("pending donation has completion fields")
		}
	case StatusAccepted:
		if d.ShelterID == "" || d.AcceptedAt == nil {
			return errInvariant("accepted donation lacks a shelter binding")
		}
		if d.VolunteerID != "" || d.CompletedAt != nil {
			return errInvariant("accepted donation has completion fields")
		}
	case StatusCompleted:
		if d.ShelterID == "" || d.AcceptedAt == nil {
			return errInvariant("completed donation lacks a shelter binding")
		}
		if d.VolunteerID == "" || d.CompletedAt == nil {
			return errInvariant("completed donation lacks completion fields")
		}
	default:
		return errInvariant("unknown status " + string(d.Status))
	}
	return nil
}

// CreateInput carries donor-supplied attributes for a new donation.
type CreateInput struct {
	DonorName     string
	FoodCategory  string
	Quantity      string
	PickupAddress string
	Location      *Coordinates
	Notes         string
}

// NormalizeCreateInput trims attributes and validates the required ones.
func NormalizeCreateInput(in CreateInput) (CreateInput, FoodCategory, error) {
	in.DonorName = strings.TrimSpace(in.DonorName)
	in.Quantity = strings.TrimSpace(in.Quantity)
	in.PickupAddress = strings.TrimSpace(in.PickupAddress)
	in.Notes = strings.TrimSpace(in.Notes)

	category, ok := ParseFoodCategory(in.FoodCategory)
	if !ok {
		return CreateInput{}, "", ErrCategoryInvalid(in.FoodCategory)
	}
	in.FoodCategory = string(category)
	if in.Quantity == "" {
		return CreateInput{}, "", ErrQuantityEmpty()
	}
	if in.PickupAddress == "" {
		return CreateInput{}, "", ErrAddressEmpty()
	}
	if in.Location != nil && !validCoordinates(*in.Location) {
		in.Location = nil
	}
	return in, category, nil
}

func validCoordinates(c Coordinates) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Actor is an authenticated party with its resolved profile role.
type Actor struct {
	ID   string
	Role Role
}

// Profile is the identity record binding a user to exactly one role.
type Profile struct {
	ID             string
	DisplayName    string
	Phone          string
	Role           Role
	Locale         string
	// TelegramChatID is 0 when unlinked. Group and channel chats are negative.
	TelegramChatID int64
	CreatedAt      time.Time
}

// Actor returns the actor view of the profile.
func (p Profile) Actor() Actor {
	return Actor{ID: p.ID, Role: p.Role}
}
