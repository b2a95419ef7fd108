package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("pt-BR")

	message.SetString(lang, "donation.generic.title", "Notificação")
	message.SetString(lang, "donation.generic.body", "Você tem uma nova notificação.")
	message.SetString(lang, "donation.available.title", "Nova doação disponível")
	message.SetString(lang, "donation.available.body", "%s ofereceu %s (%s) para retirada em %s.")
	message.SetString(lang, "donation.accepted.title", "Sua doação foi aceita")
	message.SetString(lang, "donation.accepted.body", "%s aceitou sua doação de %s.")
	message.SetString(lang, "pickup.available.title", "Nova coleta disponível")
	message.SetString(lang, "pickup.available.body", "Retire %s (%s) em %s.")
	message.SetString(lang, "donation.completed.title", "Sua doação foi concluída")
	message.SetString(lang, "donation.completed.body", "Sua doação de %s chegou ao abrigo.")
	message.SetString(lang, "donation.shelter.unknown", "Um abrigo")

	message.SetString(lang, "category.produce", "hortifrúti")
	message.SetString(lang, "category.bakery", "padaria")
	message.SetString(lang, "category.dairy", "laticínios")
	message.SetString(lang, "category.meat", "carnes")
	message.SetString(lang, "category.prepared", "refeições prontas")
	message.SetString(lang, "category.packaged", "alimentos embalados")
	message.SetString(lang, "category.other", "alimentos")
}
