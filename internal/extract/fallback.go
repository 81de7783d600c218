package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

// Fallback tries Primary and switches to Secondary when Primary errors. It does not retry.
type Fallback struct {
	Primary   Extractor
	Secondary Extractor
	Logger    *slog.Logger
}

func NewFallback(primary, secondary Extractor, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{Primary: primary, Secondary: secondary, Logger: logger}
}

func (f *Fallback) Extract(ctx context.Context, text string) (entity.ParsedReceipt, error) {
	out, err := f.Primary.Extract(ctx, text)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return entity.ParsedReceipt{}, err
	}
	f.Logger.Warn("extract.primary.failed", "err", err)
	return f.Secondary.Extract(ctx, text)
}
