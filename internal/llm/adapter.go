package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

// ErrNotReceipt is returned when the model reports that the text is not a receipt.
var ErrNotReceipt = fmt.Errorf("%w: text is not a receipt", common.ErrInvalidInput)

// Extractor exposes a FieldExtractor as a receipt-text extractor.
type Extractor struct {
	fields          FieldExtractor
	defaultCurrency string
	logger          *slog.Logger
}

func NewExtractor(fields FieldExtractor, defaultCurrency string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{fields: fields, defaultCurrency: defaultCurrency, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, text string) (entity.ParsedReceipt, error) {
	fields, _, err := e.fields.ExtractFields(ctx, ExtractRequest{
		Text:              text,
		AllowedOperations: constants.OperationStrings(),
		DefaultCurrency:   e.defaultCurrency,
	})
	if err != nil {
		return entity.ParsedReceipt{}, err
	}
	receipt, err := ToParsedReceipt(fields)
	if err != nil {
		e.logger.Warn("llm.extract.convert_failed", "error", err)
		return entity.ParsedReceipt{}, err
	}
	return receipt, nil
}

// ToParsedReceipt converts model fields into a draft receipt. Unknown operation types and
// unparsable dates are carried through so validation reports them.
func ToParsedReceipt(f ReceiptFields) (entity.ParsedReceipt, error) {
	if msg := strings.TrimSpace(f.Error); msg != "" {
		return entity.ParsedReceipt{}, fmt.Errorf("%w: %s", ErrNotReceipt, msg)
	}

	var out entity.ParsedReceipt
	v := common.NewValidator()

	if s := strings.TrimSpace(f.DateTime); s != "" {
		if t, err := common.ParseISODateTime(s); err == nil {
			out.DateTime = t.Format(entity.DateTimeLayout)
		} else {
			out.DateTime = s
		}
	}
	if s := strings.TrimSpace(f.OperationType); s != "" {
		if op, ok := constants.CanonicalizeOperation(s); ok {
			out.OperationType = op
		} else {
			out.OperationType = constants.OperationType(s)
		}
	}
	out.Amount = parseMoney(v, "amount", f.Amount)
	out.Balance = parseMoney(v, "balance", f.Balance)
	if s := strings.TrimSpace(f.Currency); s != "" {
		out.Currency = constants.NormalizeCurrency(s)
	}
	out.CardNumber = strings.TrimSpace(f.CardNumber)
	out.Description = strings.TrimSpace(f.Description)
	out.Operator = strings.TrimSpace(f.Operator)

	if err := v.Error(); err != nil {
		return entity.ParsedReceipt{}, err
	}
	return out, nil
}

func parseMoney(v *common.Validator, field, raw string) *decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		v.Field(field, s, func(name string, value interface{}) *common.ValidationError {
			return &common.ValidationError{Field: name, Value: value, Message: "must be a number"}
		})
		return nil
	}
	return &d
}
