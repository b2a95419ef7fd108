// Package render produces localized notification copy for donation events.
package render

import (
	"strings"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message types, one per notification rule.
const (
	TypeDonationAvailable = "donation.available"
	TypeDonationAccepted  = "donation.accepted"
	TypePickupAvailable   = "pickup.available"
	TypeDonationCompleted = "donation.completed"

	defaultGenericTitle   = "Notification"
	defaultGenericBody    = "You have a new notification."
	defaultUnknownShelter = "A shelter"
)

// Input is one render request.
type Input struct {
	MessageType string
	Donation    domain.Donation
	// ShelterName is the display name of the accepting shelter.
	ShelterName string
}

// Output is localized copy for one notification.
type Output struct {
	Title string
	Body  string
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

var supported = language.NewMatcher([]language.Tag{
	language.English,
	language.MustParse("pt-BR"),
})

// NewLocalizer returns a printer for locale, falling back to English.
func NewLocalizer(locale string) Localizer {
	tag, _ := language.MatchStrings(supported, strings.TrimSpace(locale))
	base, _ := tag.Base()
	if base.String() == "pt" {
		return message.NewPrinter(language.MustParse("pt-BR"))
	}
	return message.NewPrinter(language.English)
}

// Render returns localized copy for input.
func Render(loc Localizer, input Input) Output {
	d := input.Donation
	category := localizeWithFallback(loc, "category."+string(d.FoodCategory), string(d.FoodCategory))
	switch input.MessageType {
	case TypeDonationAvailable:
		return output(loc, "donation.available", d.DonorName, d.Quantity, category, d.PickupAddress)
	case TypeDonationAccepted:
		shelter := strings.TrimSpace(input.ShelterName)
		if shelter == "" {
			shelter = localizeWithFallback(loc, "donation.shelter.unknown", defaultUnknownShelter)
		}
		return output(loc, "donation.accepted", shelter, category)
	case TypePickupAvailable:
		return output(loc, "pickup.available", d.Quantity, category, d.PickupAddress)
	case TypeDonationCompleted:
		return output(loc, "donation.completed", category)
	default:
		return genericOutput(loc)
	}
}

func output(loc Localizer, prefix string, args ...any) Output {
	titleKey := prefix + ".title"
	bodyKey := prefix + ".body"
	title := localize(loc, titleKey)
	body := localize(loc, bodyKey, args...)
	if title == titleKey || body == bodyKey || title == "" {
		return genericOutput(loc)
	}
	return Output{Title: title, Body: body}
}

func genericOutput(loc Localizer) Output {
	return Output{
		Title: localizeWithFallback(loc, "donation.generic.title", defaultGenericTitle),
		Body:  localizeWithFallback(loc, "donation.generic.body", defaultGenericBody),
	}
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}
