// Package currency converts and formats prices for display. All prices are
// stored upstream in USD; the selected currency affects presentation only.
package currency

import (
	"fmt"
	"math"

	dErrors "storefront/pkg/domain-errors"
)

// Currency is one of the fixed set of display currencies.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	RUB Currency = "RUB"
	AED Currency = "AED"
)

// Info pairs a display symbol with the conversion rate from the USD base.
type Info struct {
	Symbol string
	Rate   float64
}

var table = map[Currency]Info{
	USD: {Symbol: "$", Rate: 1},
	EUR: {Symbol: "€", Rate: 0.92},
	RUB: {Symbol: "₽", Rate: 92.5},
	AED: {Symbol: "د.إ", Rate: 3.67},
}

// RUB and AED render without decimals.
var zeroDecimal = map[Currency]bool{
	RUB: true,
	AED: true,
}

// All lists the supported currencies in display order.
func All() []Currency {
	return []Currency{USD, EUR, RUB, AED}
}

// Parse validates a currency code.
func Parse(s string) (Currency, error) {
	c := Currency(s)
	if _, ok := table[c]; !ok {
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unsupported currency %q", s))
	}
	return c, nil
}

// Lookup returns the symbol/rate pair for a currency. Unknown currencies
// fall back to USD so a corrupted preference can never break rendering.
func Lookup(c Currency) Info {
	if info, ok := table[c]; ok {
		return info
	}
	return table[USD]
}

// Convert applies the display rate to a base-currency amount.
func Convert(amount float64, c Currency) float64 {
	return amount * Lookup(c).Rate
}

// FormatPrice renders a base-currency amount in the target currency.
// Zero-decimal currencies round to the nearest integer; the rest always
// show two decimals. Symbol is prefixed, no thousands separators. Pure and
// stateless; the output is display-only and never parsed back.
func FormatPrice(amount float64, c Currency) string {
	info := Lookup(c)
	converted := amount * info.Rate
	if zeroDecimal[c] {
		return fmt.Sprintf("%s%d", info.Symbol, int64(math.Round(converted)))
	}
	return fmt.Sprintf("%s%.2f", info.Symbol, converted)
}
