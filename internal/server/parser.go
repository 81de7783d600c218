package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/dictionary"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
	"github.com/joseph-ayodele/tbcparser/internal/pipeline"
	"github.com/joseph-ayodele/tbcparser/internal/receipts"
)

// ReceiptService is the subset of receipts.Service the transport needs.
type ReceiptService interface {
	ParseReceipt(ctx context.Context, text string, telegramID *int64) (entity.ParsedReceipt, error)
	BatchParse(ctx context.Context, texts []string, telegramID *int64) ([]pipeline.BatchResult, error)
	ParseAndStore(ctx context.Context, text string, telegramID int64, username string) (*entity.Transaction, entity.ParsedReceipt, error)
	FlushOperatorCache()
}

// Exporter renders stored transactions as XLSX.
type Exporter interface {
	ExportTransactionsXLSX(ctx context.Context, telegramID int64, from, to *time.Time) ([]byte, error)
}

type ParserServer struct {
	receipts   ReceiptService
	dict       *dictionary.Dictionary
	exporter   Exporter
	adminToken string
	logger     *slog.Logger
}

func NewParserServer(receipts ReceiptService, dict *dictionary.Dictionary, exporter Exporter, adminToken string, logger *slog.Logger) *ParserServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserServer{
		receipts:   receipts,
		dict:       dict,
		exporter:   exporter,
		adminToken: adminToken,
		logger:     logger,
	}
}

var _ ReceiptParserServer = (*ParserServer)(nil)

// ParseReceipt parses {"text", "telegram_id"?} without storing it.
func (s *ParserServer) ParseReceipt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text := stringField(req, "text")
	telegramID, err := optionalInt64(req, "telegram_id")
	if err != nil {
		return nil, common.ToStatus(err)
	}

	receipt, err := s.receipts.ParseReceipt(ctx, text, telegramID)
	if err != nil {
		s.logger.Info("grpc.parse.rejected", "error", err)
		return nil, common.ToStatus(err)
	}
	out, err := toStruct(receipt)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return out, nil
}

type batchItem struct {
	Index   int                   `json:"index"`
	Receipt *entity.ParsedReceipt `json:"receipt,omitempty"`
	Error   string                `json:"error,omitempty"`
}

type batchResponse struct {
	BatchID string      `json:"batch_id"`
	Total   int         `json:"total"`
	Failed  int         `json:"failed"`
	Results []batchItem `json:"results"`
}

// BatchParse parses {"texts": [...], "telegram_id"?}. Per-item failures are reported
// inline; only malformed requests fail the call.
func (s *ParserServer) BatchParse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	texts, err := stringList(req, "texts")
	if err != nil {
		return nil, common.ToStatus(err)
	}
	telegramID, err := optionalInt64(req, "telegram_id")
	if err != nil {
		return nil, common.ToStatus(err)
	}

	results, err := s.receipts.BatchParse(ctx, texts, telegramID)
	if err != nil {
		return nil, common.ToStatus(err)
	}

	resp := batchResponse{BatchID: uuid.NewString(), Total: len(results), Results: make([]batchItem, 0, len(results))}
	for _, r := range results {
		item := batchItem{Index: r.Index, Receipt: r.Receipt}
		if r.Err != nil {
			item.Error = r.Err.Error()
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}
	s.logger.Info("grpc.batch.done", "batch_id", resp.BatchID, "total", resp.Total, "failed", resp.Failed)

	out, err := toStruct(resp)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return out, nil
}

type storeResponse struct {
	Transaction *entity.Transaction  `json:"transaction"`
	Receipt     entity.ParsedReceipt `json:"receipt"`
}

// StoreReceipt parses and persists {"text", "telegram_id", "username"?}.
func (s *ParserServer) StoreReceipt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text := stringField(req, "text")
	telegramID, err := requiredInt64(req, "telegram_id")
	if err != nil {
		return nil, common.ToStatus(err)
	}

	tx, receipt, err := s.receipts.ParseAndStore(ctx, text, telegramID, stringField(req, "username"))
	if err != nil {
		var dup *receipts.DuplicateError
		if errors.As(err, &dup) {
			s.logger.Info("grpc.store.duplicate", "telegram_id", telegramID, "existing_id", dup.Existing.ID)
		}
		return nil, common.ToStatus(err)
	}
	out, err := toStruct(storeResponse{Transaction: tx, Receipt: receipt})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return out, nil
}

type lookupResponse struct {
	Found               bool                   `json:"found"`
	Alias               string                 `json:"alias"`
	Normalized          string                 `json:"normalized"`
	Match               *dictionary.AliasEntry `json:"match,omitempty"`
	OperatorMetadata    *dictionary.Metadata   `json:"operator_metadata,omitempty"`
	ApplicationMetadata *dictionary.Metadata   `json:"application_metadata,omitempty"`
}

// LookupOperator resolves {"alias"} against the active dictionary.
func (s *ParserServer) LookupOperator(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	alias := stringField(req, "alias")
	if alias == "" {
		return nil, common.InvalidArgumentError("alias is required")
	}

	resp := lookupResponse{Alias: alias, Normalized: s.dict.Normalize(alias)}
	if entry, ok := s.dict.Lookup(alias); ok {
		resp.Found = true
		resp.Match = &entry
		if md, ok := s.dict.OperatorMetadata(entry.Operator); ok {
			resp.OperatorMetadata = &md
		}
		if entry.Application != "" {
			if md, ok := s.dict.ApplicationMetadata(entry.Application); ok {
				resp.ApplicationMetadata = &md
			}
		}
	}
	out, err := toStruct(resp)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return out, nil
}

// ExportTransactions returns an XLSX workbook for {"telegram_id", "from"?, "to"?}.
func (s *ParserServer) ExportTransactions(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	telegramID, err := requiredInt64(req, "telegram_id")
	if err != nil {
		return nil, common.ToStatus(err)
	}
	from, err := optionalDate(req, "from")
	if err != nil {
		return nil, common.ToStatus(err)
	}
	to, err := optionalDate(req, "to")
	if err != nil {
		return nil, common.ToStatus(err)
	}

	xlsx, err := s.exporter.ExportTransactionsXLSX(ctx, telegramID, from, to)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "telegram_id", telegramID, "error", err)
		return nil, common.ToStatus(err)
	}
	return wrapperspb.Bytes(xlsx), nil
}
