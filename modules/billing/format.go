package billing

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrymomot/mpsubs/pkg/subscription"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// formatPrice renders m the way payers read it, e.g. "R$ 29,90".
func formatPrice(m subscription.Money) string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return m.String()
	}
	return printer.Sprintf("%v %.2f", currency.NarrowSymbol(unit), m.Float())
}

func formatInterval(months int) string {
	switch months {
	case 1:
		return "mensal"
	case 12:
		return "anual"
	default:
		return printer.Sprintf("a cada %d meses", months)
	}
}
