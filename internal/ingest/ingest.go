package ingest

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

// Owner is the user that inbox receipts are stored for.
type Owner struct {
	TelegramID int64
	Username   string
}

// Result is the per-file ingest outcome.
type Result struct {
	SourcePath    string
	FileExt       string
	HashHex       string
	Status        constants.IngestStatus
	TransactionID int64
	Err           string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned    uint32
	Matched    uint32
	Stored     uint32
	Duplicates uint32
	Invalid    uint32
	Failed     uint32
}

func (s *DirStats) add(r Result) {
	switch r.Status {
	case constants.IngestStatusStored:
		s.Stored++
	case constants.IngestStatusDuplicate:
		s.Duplicates++
	case constants.IngestStatusInvalid:
		s.Invalid++
	default:
		s.Failed++
	}
}

// Storer persists one receipt text. receipts.Service satisfies it.
type Storer interface {
	ParseAndStore(ctx context.Context, text string, telegramID int64, username string) (*entity.Transaction, entity.ParsedReceipt, error)
}

// Ingestor is the behavior the daemon and CLIs depend on.
type Ingestor interface {
	// IngestPath a single path.
	IngestPath(ctx context.Context, owner Owner, path string) (Result, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, owner Owner, root string, skipHidden bool) ([]Result, DirStats, error)
}

// Classify maps a store error onto an ingest status.
func Classify(err error) constants.IngestStatus {
	switch {
	case err == nil:
		return constants.IngestStatusStored
	case errors.Is(err, common.ErrDuplicate):
		return constants.IngestStatusDuplicate
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidInput):
		return constants.IngestStatusInvalid
	default:
		return constants.IngestStatusFailed
	}
}
