package extract

import (
	"regexp"
	"strings"
)

var (
	operatorLineRe    = regexp.MustCompile(`(?i)(?:оператор|operator|отправитель|sender)\s*:\s*(.*)`)
	descriptionLineRe = regexp.MustCompile(`(?i)^(?:описание|description)\s*:\s*(.*)$`)
)

// lines containing any of these are labels, not free text
var metaKeywords = []string{"дата", "тип", "сум", "баланс", "карта", "operator", "оператор", "описание", "description"}

// OperatorCandidate returns the value of an "operator:"-style line, else the first
// line of text unless it looks like a label.
func OperatorCandidate(text string) (string, bool) {
	lines := nonEmptyLines(text)
	for _, line := range lines {
		if m := operatorLineRe.FindStringSubmatch(line); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v, true
			}
		}
	}
	if len(lines) == 0 || isMetaLine(lines[0]) {
		return "", false
	}
	return lines[0], true
}

// Description returns an explicit "описание:" value, else the remaining
// non-label lines after the first, joined with spaces.
func Description(text string) (string, bool) {
	lines := nonEmptyLines(text)
	for _, line := range lines {
		if m := descriptionLineRe.FindStringSubmatch(line); m != nil {
			v := strings.TrimSpace(m[1])
			return v, v != ""
		}
	}
	var parts []string
	for i, line := range lines {
		if i == 0 || isMetaLine(line) {
			continue
		}
		parts = append(parts, line)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func isMetaLine(line string) bool {
	return containsAny(strings.ToLower(line), metaKeywords)
}

// nonEmptyLines splits text on newlines and returns trimmed, non-blank lines.
func nonEmptyLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
