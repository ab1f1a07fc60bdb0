package domain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.English)

// FormatRupiah renders an amount the way the storefront displays prices,
// e.g. "Rp 35,000".
func FormatRupiah(amount float64) string {
	if amount == math.Trunc(amount) {
		return pricePrinter.Sprintf("Rp %d", int64(amount))
	}
	return pricePrinter.Sprintf("Rp %.2f", amount)
}
