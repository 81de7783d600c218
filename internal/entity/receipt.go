package entity

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tbcparser/constants"
)

// DateTimeLayout is the zone-less ISO-8601 form used for date_time.
const DateTimeLayout = "2006-01-02T15:04:05"

// ParsedReceipt is the draft and enriched record produced for one receipt text.
// Empty strings, nil pointers and nil slices mean the field was not found.
type ParsedReceipt struct {
	DateTime      string                  `json:"date_time,omitempty"`
	OperationType constants.OperationType `json:"operation_type,omitempty"`
	Amount        *decimal.Decimal        `json:"amount,omitempty"`
	Currency      string                  `json:"currency,omitempty"`
	CardNumber    string                  `json:"card_number,omitempty"`
	Balance       *decimal.Decimal        `json:"balance,omitempty"`
	Description   string                  `json:"description,omitempty"`

	Operator                     string   `json:"operator,omitempty"`
	OperatorRaw                  string   `json:"operator_raw,omitempty"`
	OperatorNormalized           string   `json:"operator_normalized,omitempty"`
	OperatorName                 string   `json:"operator_name,omitempty"`
	OperatorBrand                string   `json:"operator_brand,omitempty"`
	OperatorDescription          string   `json:"operator_description,omitempty"`
	OperatorCategory             string   `json:"operator_category,omitempty"`
	OperatorCountry              string   `json:"operator_country,omitempty"`
	OperatorTags                 []string `json:"operator_tags,omitempty"`
	OperatorApplication          string   `json:"operator_application,omitempty"`
	OperatorApplicationTags      []string `json:"operator_application_tags,omitempty"`
	OperatorApplicationPlatforms []string `json:"operator_application_platforms,omitempty"`
	OperatorID                   *int64   `json:"operator_id,omitempty"`
}

// HasOperator reports whether an operator candidate was extracted.
func (r *ParsedReceipt) HasOperator() bool {
	return r != nil && r.Operator != ""
}
