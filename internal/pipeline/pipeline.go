package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/tbcparser/internal/enrich"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
	"github.com/joseph-ayodele/tbcparser/internal/extract"
)

// Pipeline coordinates extraction, enrichment and validation for one receipt text.
type Pipeline struct {
	Logger    *slog.Logger
	Extractor extract.Extractor
	Merger    *enrich.Merger
}

func New(logger *slog.Logger, extractor extract.Extractor, merger *enrich.Merger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Logger: logger, Extractor: extractor, Merger: merger}
}

// Parse extracts, enriches and validates text. records are the caller's known
// operators in priority order. Validation failures come back as *common.ValidationErrors.
func (p *Pipeline) Parse(ctx context.Context, text string, records []entity.OperatorRecord) (entity.ParsedReceipt, error) {
	enriched, err := p.ParseDraft(ctx, text, records)
	if err != nil {
		return entity.ParsedReceipt{}, err
	}

	if err := Validate(enriched); err != nil {
		p.Logger.Warn("pipeline.parse.invalid", "err", err)
		return entity.ParsedReceipt{}, err
	}

	p.Logger.Info("pipeline.parse.ok",
		"date_time", enriched.DateTime,
		"operation_type", enriched.OperationType,
		"operator", enriched.Operator,
		"operator_matched", enriched.OperatorID != nil)
	return enriched, nil
}

// ParseDraft extracts and enriches text without validating the result.
func (p *Pipeline) ParseDraft(ctx context.Context, text string, records []entity.OperatorRecord) (entity.ParsedReceipt, error) {
	draft, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "text_bytes", len(text), "err", err)
		return entity.ParsedReceipt{}, err
	}
	return p.Merger.Enrich(draft, records), nil
}

// BatchResult is one item of a batch parse, tagged with its input index.
type BatchResult struct {
	Index   int
	Receipt *entity.ParsedReceipt
	Err     error
}

// Batch parses every text independently. One failure never aborts the others; a
// cancelled context marks the remaining items with the context error.
func (p *Pipeline) Batch(ctx context.Context, texts []string, records []entity.OperatorRecord) []BatchResult {
	results := make([]BatchResult, 0, len(texts))
	failed := 0
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			results = append(results, BatchResult{Index: i, Err: err})
			failed++
			continue
		}
		r, err := p.Parse(ctx, text, records)
		if err != nil {
			results = append(results, BatchResult{Index: i, Err: err})
			failed++
			continue
		}
		results = append(results, BatchResult{Index: i, Receipt: &r})
	}
	p.Logger.Info("pipeline.batch.done", "total", len(texts), "failed", failed)
	return results
}
