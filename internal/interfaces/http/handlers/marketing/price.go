package marketing

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
)

var currencySymbols = map[string]string{
	"ILS": "₪",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a minor-unit amount for display, dropping agorot on whole amounts.
func FormatPrice(m commondto.Money) string {
	code := m.Currency
	if unit, err := currency.ParseISO(code); err == nil {
		code = unit.String()
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}

	var amount string
	if m.Amount%100 == 0 {
		amount = pricePrinter.Sprint(number.Decimal(m.Amount / 100))
	} else {
		amount = pricePrinter.Sprint(number.Decimal(float64(m.Amount)/100,
			number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	}
	return symbol + amount
}
