package llm

import "context"

// ReceiptFields is the normalized shape we want from the LLM.
type ReceiptFields struct {
	DateTime      string `json:"date_time,omitempty"`      // YYYY-MM-DD HH:MM:SS
	OperationType string `json:"operation_type,omitempty"` // payment | refill | conversion | cancel
	Amount        string `json:"amount,omitempty"`         // decimal
	Currency      string `json:"currency,omitempty"`       // ISO 4217
	CardNumber    string `json:"card_number,omitempty"`    // *NNNN
	Description   string `json:"description,omitempty"`
	Balance       string `json:"balance,omitempty"` // decimal
	Operator      string `json:"operator,omitempty"`

	// Error is set by the model when the text is not a receipt.
	Error string `json:"error,omitempty"`
}

type ExtractRequest struct {
	Text              string
	AllowedOperations []string
	DefaultCurrency   string
}

// FieldExtractor is the interface the LLM-backed extractor depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (ReceiptFields, []byte /*rawJSON*/, error)
}
