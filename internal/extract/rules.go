package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

// Rules is the pattern-based extractor. It never fails on malformed text.
type Rules struct {
	logger *slog.Logger
}

// NewRules returns the rule-based extractor.
func NewRules(logger *slog.Logger) *Rules {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rules{logger: logger}
}

// Extract applies every field extractor independently.
func (r *Rules) Extract(ctx context.Context, text string) (entity.ParsedReceipt, error) {
	if err := ctx.Err(); err != nil {
		return entity.ParsedReceipt{}, err
	}

	var out entity.ParsedReceipt
	if dt, ok := DateTime(text); ok {
		out.DateTime = dt
	}
	if op, ok := constants.ClassifyOperation(text); ok {
		out.OperationType = op
	}
	if m, ok := Amount(text); ok {
		amount := m.Value
		out.Amount = &amount
		out.Currency = m.Currency
	}
	if b, ok := Balance(text); ok {
		out.Balance = &b
	}
	if card, ok := CardNumber(text); ok {
		out.CardNumber = card
	}
	if op, ok := OperatorCandidate(text); ok {
		out.Operator = op
	}
	if desc, ok := Description(text); ok {
		out.Description = desc
	}

	r.logger.Debug("extract.rules.done",
		"date_time", out.DateTime,
		"operation_type", out.OperationType,
		"has_amount", out.Amount != nil,
		"currency", out.Currency,
		"operator", out.Operator)
	return out, nil
}
