package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "donation.generic.title", defaultGenericTitle)
	message.SetString(lang, "donation.generic.body", defaultGenericBody)
	message.SetString(lang, "donation.available.title", "New donation available")
	message.SetString(lang, "donation.available.body", "%s offered %s (%s) for pickup at %s.")
	message.SetString(lang, "donation.accepted.title", "Your donation was accepted")
	message.SetString(lang, "donation.accepted.body", "%s accepted your %s donation.")
	message.SetString(lang, "pickup.available.title", "New pickup available")
	message.SetString(lang, "pickup.available.body", "Collect %s (%s) at %s.")
	message.SetString(lang, "donation.completed.title", "Your donation was completed")
	message.SetString(lang, "donation.completed.body", "Your %s donation reached the shelter.")
	message.SetString(lang, "donation.shelter.unknown", defaultUnknownShelter)

	message.SetString(lang, "category.produce", "produce")
	message.SetString(lang, "category.bakery", "bakery")
	message.SetString(lang, "category.dairy", "dairy")
	message.SetString(lang, "category.meat", "meat")
	message.SetString(lang, "category.prepared", "prepared meals")
	message.SetString(lang, "category.packaged", "packaged goods")
	message.SetString(lang, "category.other", "food")
}
