package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/dictionary"
	"github.com/joseph-ayodele/tbcparser/internal/enrich"
	"github.com/joseph-ayodele/tbcparser/internal/export"
	"github.com/joseph-ayodele/tbcparser/internal/extract"
	"github.com/joseph-ayodele/tbcparser/internal/ingest"
	"github.com/joseph-ayodele/tbcparser/internal/pipeline"
	"github.com/joseph-ayodele/tbcparser/internal/receipts"
	repo "github.com/joseph-ayodele/tbcparser/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory with .txt/.pdf receipts (required)")
		out        = flag.String("out", "", "output XLSX file path (defaults to <dir>/../transactions.xlsx)")
		dictPath   = flag.String("dict", "", "operator dictionary (defaults to OPERATORS_DICTIONARY_PATH)")
		sqlitePath = flag.String("sqlite", "", "store receipts in this SQLite file and export from it")
		telegramID = flag.Int64("telegram-id", 1, "owner of stored receipts (with --sqlite)")
		fromStr    = flag.String("from", "", "from date YYYY-MM-DD (with --sqlite)")
		toStr      = flag.String("to", "", "to date YYYY-MM-DD (with --sqlite)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "transactions.xlsx")
	}

	var from, to *time.Time
	for _, d := range []struct {
		flag string
		raw  string
		dst  **time.Time
	}{{"--from", *fromStr, &from}, {"--to", *toStr, &to}} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", d.raw)
		if err != nil {
			printError("Error: invalid %s date format, use YYYY-MM-DD: %v\n", d.flag, err)
			os.Exit(1)
		}
		*d.dst = &parsed
	}

	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *dictPath == "" {
		*dictPath = cfg.Dictionary.Path
	}
	dict, err := dictionary.New(*dictPath, logger)
	if err != nil {
		logger.Error("failed to load operator dictionary", "path", *dictPath, "error", err)
		os.Exit(1)
	}
	pipe := pipeline.New(logger, extract.NewRules(logger), enrich.NewMerger(dict, logger))
	reader := ingest.Reader{Pdftotext: cfg.Ingest.Pdftotext, Logger: logger}

	var xlsx []byte
	var summary string
	if *sqlitePath != "" {
		xlsx, summary, err = storeAndExport(ctx, pipe, reader, *sqlitePath, *dir, *telegramID, from, to, logger)
	} else {
		xlsx, summary, err = parseAndExport(ctx, pipe, reader, *dir, logger)
	}
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Batch processing complete!\n%s- Output: %s\n", summary, *out)
}

// storeAndExport ingests the directory into SQLite and exports what the owner has stored.
func storeAndExport(ctx context.Context, pipe *pipeline.Pipeline, reader ingest.Reader, sqlitePath, dir string, telegramID int64, from, to *time.Time, logger *slog.Logger) ([]byte, string, error) {
	db, err := repo.Open(ctx, common.DatabaseConfig{Driver: repo.DriverSQLite, DSN: sqlitePath}, logger)
	if err != nil {
		return nil, "", err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return nil, "", err
	}

	svc := receipts.NewService(pipe,
		repo.NewUserRepository(db, logger),
		repo.NewOperatorRepository(db, logger),
		repo.NewTransactionRepository(db, logger),
		receipts.Options{}, logger)

	_, stats, err := ingest.NewFSIngestor(svc, logger, ingest.WithReader(reader)).
		IngestDirectory(ctx, ingest.Owner{TelegramID: telegramID, Username: "batch"}, dir, true)
	if err != nil {
		return nil, "", err
	}

	xlsx, err := export.NewService(svc, logger).ExportTransactionsXLSX(ctx, telegramID, from, to)
	if err != nil {
		return nil, "", err
	}
	summary := fmt.Sprintf("- Files matched: %d\n- Stored: %d\n- Duplicates: %d\n- Invalid: %d\n- Failed: %d\n",
		stats.Matched, stats.Stored, stats.Duplicates, stats.Invalid, stats.Failed)
	return xlsx, summary, nil
}

// parseAndExport parses every receipt in memory without persisting anything.
func parseAndExport(ctx context.Context, pipe *pipeline.Pipeline, reader ingest.Reader, dir string, logger *slog.Logger) ([]byte, string, error) {
	var rows []export.Row
	var matched, failed int

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path != dir && ingest.IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !ingest.AllowedExt(filepath.Ext(path)) {
			return nil
		}
		matched++

		doc, err := reader.Read(ctx, path)
		if err != nil {
			logger.Warn("batch.read.failed", "path", path, "error", err)
			failed++
			return nil
		}
		r, err := pipe.Parse(ctx, doc.Text, nil)
		if err != nil {
			logger.Warn("batch.parse.failed", "path", path, "error", err)
			failed++
			return nil
		}
		row, err := export.RowFromReceipt(fmt.Sprintf("CHK%03d", len(rows)+1), r, filepath.Base(path))
		if err != nil {
			failed++
			return nil
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("walk: %w", err)
	}

	buf, err := export.WriteXLSX(rows)
	if err != nil {
		return nil, "", err
	}
	summary := fmt.Sprintf("- Files matched: %d\n- Parsed: %d\n- Failures: %d\n", matched, len(rows), failed)
	return buf.Bytes(), summary, nil
}
