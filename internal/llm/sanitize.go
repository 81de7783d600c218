package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tbcparser/constants"
)

var allowedKeys = map[string]struct{}{
	"date_time": {}, "operation_type": {}, "amount": {}, "currency": {},
	"card_number": {}, "description": {}, "balance": {}, "operator": {}, "error": {},
}

// NormalizeAndSanitizeJSON repairs the usual model slips so a reply can pass the schema:
// - renames known synonyms (type -> operation_type, card -> card_number, ...)
// - drops null/empty fields
// - coerces numeric money fields to strings
// - reduces card numbers to *NNNN and currencies to ISO codes
// - removes unknown keys
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	changes := make([]string, 0, 8)
	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			changes = append(changes, from+"->"+to)
		}
	}
	rename("datetime", "date_time")
	rename("date", "date_time")
	rename("type", "operation_type")
	rename("operation", "operation_type")
	rename("card", "card_number")
	rename("sum", "amount")
	rename("merchant", "operator")

	for _, k := range []string{"amount", "balance"} {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			m[k] = decimal.NewFromFloat(t).Round(2).String()
		case string:
			cleaned := strings.Map(func(r rune) rune {
				if unicode.IsSpace(r) || r == '\'' {
					return -1
				}
				if r == ',' {
					return '.'
				}
				return r
			}, t)
			if cleaned == "" {
				delete(m, k)
				changes = append(changes, k+"(empty)")
				continue
			}
			d, err := decimal.NewFromString(cleaned)
			if err != nil {
				// amount stays so the schema rejects the reply; balance is optional
				if k == "balance" {
					delete(m, k)
					changes = append(changes, k+"(unparsable)")
				}
				continue
			}
			m[k] = d.Round(2).String()
		case nil:
			delete(m, k)
			changes = append(changes, k+"(null)")
		default:
			delete(m, k)
			changes = append(changes, k+"(type)")
		}
	}

	if v, ok := m["card_number"].(string); ok {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, v)
		if len(digits) >= 4 {
			m["card_number"] = "*" + digits[len(digits)-4:]
		} else {
			delete(m, "card_number")
			changes = append(changes, "card_number(short)")
		}
	}

	if v, ok := m["currency"].(string); ok && strings.TrimSpace(v) != "" {
		m["currency"] = constants.NormalizeCurrency(v)
	}
	if v, ok := m["operation_type"].(string); ok {
		if op, found := constants.CanonicalizeOperation(v); found {
			m["operation_type"] = string(op)
		}
	}

	for k := range maps.Clone(m) {
		if _, ok := allowedKeys[k]; !ok {
			delete(m, k)
			changes = append(changes, k+"(unknown)")
		}
	}

	for k, v := range maps.Clone(m) {
		switch t := v.(type) {
		case nil:
			delete(m, k)
			changes = append(changes, k+"(null)")
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				delete(m, k)
				changes = append(changes, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changes, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changes) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "changes", changes)
	}
	return out, changes, nil
}
