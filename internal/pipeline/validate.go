package pipeline

import (
	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

// Validate checks the fields a stored receipt needs. Every failure is reported in
// one *common.ValidationErrors.
func Validate(r entity.ParsedReceipt) error {
	v := common.NewValidator()
	v.Field("date_time", r.DateTime, common.Required, common.ISODateTime)
	v.Field("operation_type", string(r.OperationType), common.Required, common.OneOf(constants.OperationStrings()...))
	v.Field("amount", r.Amount, common.Required, common.PositiveDecimal)
	v.Field("currency", r.Currency, common.CurrencyCode)
	v.Field("card_number", r.CardNumber, common.MaskedCard)
	v.Field("balance", r.Balance, common.NonNegativeDecimal)
	return v.Error()
}
