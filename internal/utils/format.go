// internal/utils/format.go
package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatPrice renders a price the way the listing pages display it,
// e.g. "R$ 1.250.000,00".
func FormatPrice(price float64) string {
	return pricePrinter.Sprintf("R$ %.2f", price)
}
