package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tbcparser/constants"
)

// Transaction is a persisted receipt.
type Transaction struct {
	ID            int64                   `json:"id"`
	UserID        int64                   `json:"user_id"`
	OperatorID    *int64                  `json:"operator_id,omitempty"`
	OperatorName  string                  `json:"operator_name,omitempty"`
	DateTime      time.Time               `json:"date_time"`
	OperationType constants.OperationType `json:"operation_type"`
	Amount        decimal.Decimal         `json:"amount"`
	Currency      string                  `json:"currency"`
	CardNumber    string                  `json:"card_number,omitempty"`
	Description   string                  `json:"description,omitempty"`
	Balance       *decimal.Decimal        `json:"balance,omitempty"`
	RawText       string                  `json:"raw_text"`
	ParsedBy      string                  `json:"parsed_by"`
	CreatedAt     time.Time               `json:"created_at"`
}
