package extract

import "regexp"

var (
	labeledCardRe = regexp.MustCompile(`(?i)(?:\bcard|карта|карты|\bpc|\bpan|пк)\s*[:#№]?\s*(?:\d{4,6}[ *xX•]*\*[ *xX•]*)?\**\s*(\d{4})\b`)
	maskedCardRe  = regexp.MustCompile(`\*+(\d{4})\b`)
)

// CardNumber returns the card suffix as "*NNNN".
func CardNumber(text string) (string, bool) {
	if m := labeledCardRe.FindStringSubmatch(text); m != nil {
		return "*" + m[1], true
	}
	if m := maskedCardRe.FindStringSubmatch(text); m != nil {
		return "*" + m[1], true
	}
	return "", false
}
