package extract

import (
	"regexp"
	"strconv"
	"time"

	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

const timePart = `(?:(?:T|,?\s+)(\d{1,2}):(\d{2})(?::(\d{2}))?)?`

type datePattern struct {
	re         *regexp.Regexp
	y, m, d    int // submatch indexes
	twoDigitYr bool
}

// tried in order; the first construction-valid match wins
var datePatterns = []datePattern{
	{re: regexp.MustCompile(`\b(\d{4})[./-](\d{1,2})[./-](\d{1,2})` + timePart), y: 1, m: 2, d: 3},
	{re: regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{4})\b` + timePart), y: 3, m: 2, d: 1},
	{re: regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{2})\b` + timePart), y: 3, m: 2, d: 1, twoDigitYr: true},
}

// DateTime finds the first valid date (with optional time) and formats it as
// 2006-01-02T15:04:05. Seconds and a missing time default to zero.
func DateTime(text string) (string, bool) {
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			year := atoi(m[p.y])
			if p.twoDigitYr {
				year += 2000
			}
			t, ok := buildTime(year, atoi(m[p.m]), atoi(m[p.d]), atoi(m[4]), atoi(m[5]), atoi(m[6]))
			if ok {
				return t.Format(entity.DateTimeLayout), true
			}
		}
	}
	return "", false
}

// buildTime rejects values time.Date would silently normalize.
func buildTime(year, month, day, hour, minute, second int) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// atoi returns 0 for empty groups.
func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
