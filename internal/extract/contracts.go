package extract

import (
	"context"

	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

// Extractor turns raw receipt text into a draft record. Missing fields are left
// empty; an error means the strategy itself failed, not that a field was absent.
type Extractor interface {
	Extract(ctx context.Context, text string) (entity.ParsedReceipt, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, text string) (entity.ParsedReceipt, error)

func (f ExtractorFunc) Extract(ctx context.Context, text string) (entity.ParsedReceipt, error) {
	return f(ctx, text)
}
