package constants

import "strings"

// DefaultCurrency is assumed when a receipt names no currency.
const DefaultCurrency = "UZS"

// currencyAliases maps lowercase tokens seen in receipts onto ISO codes.
var currencyAliases = map[string]string{
	"uzs":  "UZS",
	"sum":  "UZS",
	"so'm": "UZS",
	"сум":  "UZS",
	"сўм":  "UZS",
	"usd":  "USD",
	"$":    "USD",
	"eur":  "EUR",
	"€":    "EUR",
	"rub":  "RUB",
	"₽":    "RUB",
}

// inflected Cyrillic words are matched by stem
var currencyStems = []struct {
	stem string
	code string
}{
	{"доллар", "USD"},
	{"евро", "EUR"},
	{"руб", "RUB"},
}

// CurrencyPattern is a regexp fragment matching every recognized currency token.
const CurrencyPattern = `uzs|usd|eur|rub|so'm|sum|сўм|сум|руб[а-яё]*\.?|доллар[а-яё]*|евро|\$|€|₽`

// NormalizeCurrency maps a currency token to its code. Unknown tokens are uppercased.
func NormalizeCurrency(token string) string {
	t := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(token), "."))
	if code, ok := currencyAliases[t]; ok {
		return code
	}
	for _, s := range currencyStems {
		if strings.HasPrefix(t, s.stem) {
			return s.code
		}
	}
	return strings.ToUpper(strings.TrimSpace(token))
}

// IsKnownCurrency reports whether token maps to a code through the alias table.
func IsKnownCurrency(token string) bool {
	t := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(token), "."))
	if _, ok := currencyAliases[t]; ok {
		return true
	}
	for _, s := range currencyStems {
		if strings.HasPrefix(t, s.stem) {
			return true
		}
	}
	return false
}
