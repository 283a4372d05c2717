package renderer

import (
	"github.com/Rhymond/go-money"

	"github.com/etnz/books"
)

// FormatAmount renders a rational amount in a currency, using the currency's
// locale conventions. The value is rounded to the currency's minor unit for
// display only; callers keep the exact rational for arithmetic. An unknown
// currency code falls back to the plain decimal form.
func FormatAmount(n books.Numeric, currency string) string {
	c := money.GetCurrency(currency)
	if c == nil {
		return n.Decimal().String()
	}
	minor := n.Decimal().Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}
