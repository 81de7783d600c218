package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	pdf "github.com/dslipak/pdf"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
)

// Document is a receipt file read into text.
type Document struct {
	Path    string
	Ext     string
	Text    string
	HashHex string
}

// Reader turns receipt files into text. PDFs the built-in parser cannot read are
// retried with the pdftotext binary when Pdftotext is set.
type Reader struct {
	Pdftotext string
	Runner    Runner
	Logger    *slog.Logger
}

// ReadDocument reads path with the built-in parsers only.
func ReadDocument(path string) (Document, error) {
	return Reader{}.Read(context.Background(), path)
}

// Read loads a .txt or .pdf receipt. The hash covers the raw file bytes.
func (rd Reader) Read(ctx context.Context, path string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("abs path: %w", err)
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return Document{}, fmt.Errorf("%w: unsupported or missing extension %q", common.ErrInvalidInput, ext)
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return Document{}, fmt.Errorf("read: %w", err)
	}
	sum := sha256.Sum256(raw)
	doc := Document{Path: abs, Ext: ext, HashHex: hex.EncodeToString(sum[:])}

	switch ext {
	case "pdf":
		doc.Text, err = pdfText(abs)
		if rd.Pdftotext != "" && (err != nil || strings.TrimSpace(doc.Text) == "") {
			doc.Text, err = rd.pdftotext(ctx, abs, err)
		}
		if err != nil {
			return Document{}, err
		}
	default:
		doc.Text = strings.ToValidUTF8(string(raw), "")
	}
	doc.Text = strings.TrimSpace(strings.TrimPrefix(doc.Text, "\ufeff"))
	if doc.Text == "" {
		return Document{}, fmt.Errorf("%w: %s has no text", common.ErrInvalidInput, filepath.Base(abs))
	}
	return doc, nil
}

// pdfText joins the text rows of every page, one row per line.
func pdfText(path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", common.ErrInvalidInput, err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				if line.Len() > 0 {
					line.WriteByte(' ')
				}
				line.WriteString(word.S)
			}
			if s := strings.TrimSpace(line.String()); s != "" {
				b.WriteString(s)
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}

// pdftotext runs the external converter, keeping cause as the error when it also fails.
func (rd Reader) pdftotext(ctx context.Context, path string, cause error) (string, error) {
	logger := rd.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runner := rd.Runner
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	out, errb, err := runner.Run(ctx, rd.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		logger.Warn("ingest.pdftotext.failed", "path", path, "error", err, "stderr", strings.TrimSpace(string(errb)))
		if cause != nil {
			return "", cause
		}
		return "", fmt.Errorf("%w: pdftotext: %v", common.ErrInvalidInput, err)
	}
	// pages are separated by form feeds
	return strings.ReplaceAll(string(out), "\f", "\n"), nil
}
