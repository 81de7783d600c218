package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tbcparser/constants"
)

const (
	// grouped thousands first ("6 000 000.00", "1'250'000"), then a plain run ("6000000", "150,50")
	numberPattern   = `\d{1,3}(?:[ \x{00a0}\x{202f}'’]\d{3})+(?:[.,]\d+)?|\d+(?:[.,]\d+)?`
	currencyPattern = `((?i:` + constants.CurrencyPattern + `)|[A-Z]{3}\b)`
)

var (
	labeledAmountRe = regexp.MustCompile(`(?i)(?:на\s+сумму|сумма|amount|итого)[^\d\n]*?(` + numberPattern + `)(?:\s*` + currencyPattern + `)?`)
	// a bare amount never continues a card suffix ("*6714"), a time ("08:45") or a date ("12.05.24")
	bareAmountRe    = regexp.MustCompile(`(?:^|[^\d*:.])(` + numberPattern + `)\s*` + currencyPattern)
	balanceRe       = regexp.MustCompile(`(?i)(?:баланс|остаток|balance)[^\d\n]*?(` + numberPattern + `)`)

	numberNoise = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "", "’", "", ",", ".")
)

var balanceKeywords = []string{"баланс", "остаток", "balance"}

// Money is an amount with its currency code, which may be empty.
type Money struct {
	Value    decimal.Decimal
	Currency string
}

// ParseNumber strips spaces and apostrophes, maps comma to a decimal point and parses.
func ParseNumber(s string) (decimal.Decimal, bool) {
	cleaned := numberNoise.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Amount prefers a labeled amount and falls back to the first "number currency" pair
// not preceded by a balance keyword on its line. Unparsable numbers skip the match.
func Amount(text string) (Money, bool) {
	for _, idx := range labeledAmountRe.FindAllStringSubmatchIndex(text, -1) {
		if !endsCleanly(text, idx[3]) {
			continue
		}
		if v, ok := ParseNumber(text[idx[2]:idx[3]]); ok {
			return Money{Value: v, Currency: currencyCode(group(text, idx, 2))}, true
		}
	}
	for _, idx := range bareAmountRe.FindAllStringSubmatchIndex(text, -1) {
		if containsAny(strings.ToLower(linePrefix(text, idx[2])), balanceKeywords) {
			continue
		}
		if v, ok := ParseNumber(text[idx[2]:idx[3]]); ok {
			return Money{Value: v, Currency: currencyCode(text[idx[4]:idx[5]])}, true
		}
	}
	return Money{}, false
}

// Balance returns the number following a balance keyword.
func Balance(text string) (decimal.Decimal, bool) {
	for _, idx := range balanceRe.FindAllStringSubmatchIndex(text, -1) {
		if !endsCleanly(text, idx[3]) {
			continue
		}
		if v, ok := ParseNumber(text[idx[2]:idx[3]]); ok {
			return v, true
		}
	}
	return decimal.Decimal{}, false
}

// endsCleanly rejects a number the pattern cut short, such as "1.2" out of "1.2.3".
func endsCleanly(text string, end int) bool {
	rest := text[end:]
	if rest == "" {
		return true
	}
	if isDigit(rest[0]) {
		return false
	}
	return !((rest[0] == '.' || rest[0] == ',') && len(rest) > 1 && isDigit(rest[1]))
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// group returns submatch n of a FindStringSubmatchIndex result, or "" when it did not take part.
func group(text string, idx []int, n int) string {
	if idx[2*n] < 0 {
		return ""
	}
	return text[idx[2*n]:idx[2*n+1]]
}

func currencyCode(token string) string {
	if token == "" {
		return ""
	}
	return constants.NormalizeCurrency(token)
}

// linePrefix returns the part of the line before byte offset pos.
func linePrefix(text string, pos int) string {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	return text[start:pos]
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
