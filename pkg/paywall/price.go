package paywall

import (
	"math"
	"strconv"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrymomot/entitlements/pkg/plans"
)

// FormatPrice renders m for tag, e.g. "$ 4.99". Unknown currency codes fall
// back to "<amount> <code>".
func FormatPrice(tag language.Tag, m plans.Money) string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return strconv.FormatInt(m.Amount, 10) + " " + m.Currency
	}
	scale, _ := currency.Standard.Rounding(unit)
	amount := float64(m.Amount) / math.Pow10(scale)
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
