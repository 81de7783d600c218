package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/tbcparser/constants"
)

// FSIngestor reads receipts from the local filesystem and stores them.
type FSIngestor struct {
	store  Storer
	reader Reader
	logger *slog.Logger
}

type FSOption func(*FSIngestor)

// WithReader replaces the default built-in-only document reader.
func WithReader(r Reader) FSOption {
	return func(i *FSIngestor) { i.reader = r }
}

func NewFSIngestor(store Storer, logger *slog.Logger, opts ...FSOption) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	i := &FSIngestor{store: store, logger: logger}
	for _, opt := range opts {
		opt(i)
	}
	if i.reader.Logger == nil {
		i.reader.Logger = logger
	}
	return i
}

// IngestPath reads one file and stores its text for owner. Store failures are reported in
// the Result status; the error return is reserved for files that could not be read.
func (i *FSIngestor) IngestPath(ctx context.Context, owner Owner, path string) (Result, error) {
	doc, err := i.reader.Read(ctx, path)
	if err != nil {
		i.logger.Warn("ingest.read.failed", "path", path, "error", err)
		return Result{SourcePath: path, Status: Classify(err), Err: err.Error()}, err
	}

	out := Result{SourcePath: doc.Path, FileExt: doc.Ext, HashHex: doc.HashHex}
	tx, _, err := i.store.ParseAndStore(ctx, doc.Text, owner.TelegramID, owner.Username)
	out.Status = Classify(err)
	if err != nil {
		out.Err = err.Error()
		i.logger.Info("ingest.store.rejected", "path", doc.Path, "status", out.Status, "error", err)
		return out, nil
	}
	out.TransactionID = tx.ID
	i.logger.Info("ingest.store.ok", "path", doc.Path, "transaction_id", tx.ID, "sha256", doc.HashHex)
	return out, nil
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(
	ctx context.Context,
	owner Owner,
	root string,
	skipHidden bool,
) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Result{SourcePath: path, Status: constants.IngestStatusFailed, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, _ := i.IngestPath(ctx, owner, path)
		results = append(results, r)
		stats.add(r)
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Info("ingest.directory.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"stored", stats.Stored,
		"duplicates", stats.Duplicates,
		"invalid", stats.Invalid,
		"failed", stats.Failed,
	)
	return results, stats, nil
}
