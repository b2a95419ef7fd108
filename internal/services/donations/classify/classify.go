// Package classify suggests a food category from free text.
package classify

import (
	"strings"
	"unicode"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Suggestion is a classifier result.
type Suggestion struct {
	Category domain.FoodCategory
	// Matched lists the keywords that decided the category.
	Matched []string
}

// Classifier maps text to a category.
type Classifier interface {
	Classify(text string) Suggestion
}

// Keywords scores categories by keyword hits.
type Keywords struct {
	table map[domain.FoodCategory][]string
}

// NewKeywords returns the built-in English and Portuguese keyword table.
func NewKeywords() *Keywords {
	return &Keywords{table: defaultTable}
}

var defaultTable = map[domain.FoodCategory][]string{
	domain.CategoryProduce: {
		"apple", "banana", "carrot", "fruit", "lettuce", "onion", "potato", "tomato", "vegetable", "veggie",
		"alface", "batata", "cebola", "cenoura", "fruta", "legume", "maca", "tomate", "verdura",
	},
	domain.CategoryBakery: {
		"bagel", "baguette", "bread", "bun", "cake", "croissant", "loaf", "loaves", "muffin", "pastry", "roll",
		"bolo", "broa", "padaria", "pao", "paes", "rosca", "salgado",
	},
	domain.CategoryDairy: {
		"butter", "cheese", "cream", "milk", "yogurt", "yoghurt",
		"iogurte", "leite", "manteiga", "queijo", "requeijao",
	},
	domain.CategoryMeat: {
		"beef", "chicken", "fish", "ham", "meat", "pork", "sausage", "turkey",
		"carne", "frango", "linguica", "peixe", "porco", "presunto",
	},
	domain.CategoryPrepared: {
		"casserole", "lasagna", "meal", "prepared", "sandwich", "soup", "stew",
		"marmita", "prato", "quentinha", "refeicao", "sopa",
	},
	domain.CategoryPackaged: {
		"box", "can", "canned", "cereal", "flour", "oil", "pasta", "rice", "sugar",
		"acucar", "arroz", "enlatado", "farinha", "feijao", "lata", "macarrao", "oleo",
	},
}

// Classify returns the category with the most keyword hits. Ties resolve in
// domain.FoodCategories order; no hits yield CategoryOther.
func (k *Keywords) Classify(text string) Suggestion {
	tokens := tokenize(text)
	best := Suggestion{Category: domain.CategoryOther}
	for _, category := range domain.FoodCategories() {
		var matched []string
		for _, keyword := range k.table[category] {
			if _, ok := tokens[keyword]; ok {
				matched = append(matched, keyword)
			}
		}
		if len(matched) > len(best.Matched) {
			best = Suggestion{Category: category, Matched: matched}
		}
	}
	return best
}

func tokenize(text string) map[string]struct{} {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}
	fields := strings.FieldsFunc(strings.ToLower(folded), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		tokens[field] = struct{}{}
	}
	return tokens
}
