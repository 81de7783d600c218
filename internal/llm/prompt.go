package llm

import (
	"strings"

	"github.com/joseph-ayodele/tbcparser/constants"
)

const maxPromptText = 3000

// BuildSystemPrompt composes the system message with operation enum, currency default
// and formatting rules.
func BuildSystemPrompt(req ExtractRequest) string {
	var opLine string
	if len(req.AllowedOperations) > 0 {
		opLine = "'operation_type' MUST be exactly one of: " + strings.Join(req.AllowedOperations, ", ") + ". "
	} else {
		opLine = "'operation_type' is a short lowercase label for the transaction kind. "
	}

	defCur := strings.TrimSpace(req.DefaultCurrency)
	if defCur == "" {
		defCur = constants.DefaultCurrency
	}

	parts := []string{
		"You parse Uzbek bank card notifications (Russian, Uzbek and English). Return ONLY JSON that matches the provided JSON Schema.",
		"'date_time' uses the form YYYY-MM-DD HH:MM:SS.",
		opLine,
		"'amount' and 'balance' are plain numbers with a dot as decimal separator and no thousands separators.",
		"'currency' is a 3-letter ISO 4217 code; сум, so'm and sum mean UZS. Default to " + defCur + " if uncertain.",
		"'card_number' is only the last four digits prefixed by '*', for example *1234.",
		"'operator' is the merchant, terminal or payment service exactly as written in the text.",
		"'description' is a short summary of the transaction.",
		"Never output null. If a field is not present, omit it.",
		"If the text is not a bank transaction receipt, return {\"error\": \"<short reason>\"} and nothing else.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the receipt text, truncated to keep requests small.
func BuildUserPrompt(req ExtractRequest) string {
	text := strings.TrimSpace(req.Text)

	var b strings.Builder
	b.WriteString("Receipt text:\n")
	if len(text) > maxPromptText {
		b.WriteString(strings.ToValidUTF8(text[:maxPromptText], ""))
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
