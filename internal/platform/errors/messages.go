package errors

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var userMessages = catalog.NewBuilder(catalog.Fallback(language.English))

func init() {
	set := func(tag language.Tag, code Code, msg string) {
		if err := userMessages.SetString(tag, string(code), msg); err != nil {
			panic(err)
		}
	}
	en := language.English
	set(en, CodeDonationCategoryInvalid, "Choose a food category.")
	set(en, CodeDonationQuantityEmpty, "Tell us how much food you are donating.")
	set(en, CodeDonationAddressEmpty, "A pickup address is required.")
	set(en, CodeDonationIDInvalid, "That donation reference is not valid.")
	set(en, CodeDonationFilterInvalid, "The donation filter could not be understood.")
	set(en, CodeProfileDisplayNameEmpty, "A display name is required.")
	set(en, CodeProfileRoleInvalid, "Choose donor, shelter, or volunteer.")
	set(en, CodeProfileLocaleUnsupported, "That language is not supported yet.")
	set(en, CodeDonationInvalidTransition, "This donation cannot be updated that way.")
	set(en, CodeDonationConflict, "Someone else updated this donation first.")
	set(en, CodeLedgerUnavailable, "The service is busy. Please try again.")
	set(en, CodeIdentityMissing, "Please sign in.")
	set(en, CodeIdentityInvalid, "Your session is not valid. Please sign in again.")
	set(en, CodeProfileMissing, "Create your profile first.")
	set(en, CodeProfileExists, "You already have a profile.")
	set(en, CodePermissionDenied, "You are not allowed to do that.")
	set(en, CodeNotificationMissing, "Notification not found.")
	set(en, CodeNotFound, "Not found.")

	pt := language.BrazilianPortuguese
	set(pt, CodeDonationCategoryInvalid, "Escolha uma categoria de alimento.")
	set(pt, CodeDonationQuantityEmpty, "Informe a quantidade de alimento doada.")
	set(pt, CodeDonationAddressEmpty, "O endereço de retirada é obrigatório.")
	set(pt, CodeDonationIDInvalid, "Essa referência de doação não é válida.")
	set(pt, CodeDonationFilterInvalid, "Não foi possível entender o filtro de doações.")
	set(pt, CodeProfileDisplayNameEmpty, "O nome de exibição é obrigatório.")
	set(pt, CodeProfileRoleInvalid, "Escolha doador, abrigo ou voluntário.")
	set(pt, CodeProfileLocaleUnsupported, "Esse idioma ainda não é suportado.")
	set(pt, CodeDonationInvalidTransition, "Esta doação não pode ser atualizada dessa forma.")
	set(pt, CodeDonationConflict, "Outra pessoa atualizou esta doação primeiro.")
	set(pt, CodeLedgerUnavailable, "O serviço está ocupado. Tente novamente.")
	set(pt, CodeIdentityMissing, "Faça login.")
	set(pt, CodeIdentityInvalid, "Sua sessão não é válida. Faça login novamente.")
	set(pt, CodeProfileMissing, "Crie seu perfil primeiro.")
	set(pt, CodeProfileExists, "Você já tem um perfil.")
	set(pt, CodePermissionDenied, "Você não tem permissão para isso.")
	set(pt, CodeNotificationMissing, "Notificação não encontrada.")
	set(pt, CodeNotFound, "Não encontrado.")
}

var supportedLocales = language.NewMatcher([]language.Tag{
	language.English,
	language.BrazilianPortuguese,
})

// UserMessage returns the user-facing text for code in locale. Unknown codes
// render as the code itself.
func UserMessage(locale string, code Code, _ map[string]string) string {
	tag, _ := language.MatchStrings(supportedLocales, locale)
	base, _ := tag.Base()
	if base.String() == "pt" {
		tag = language.BrazilianPortuguese
	} else {
		tag = language.English
	}
	printer := message.NewPrinter(tag, message.Catalog(userMessages))
	msg := printer.Sprintf(string(code))
	return msg
}
