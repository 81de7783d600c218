package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

type fakeLister struct {
	txs      []entity.Transaction
	err      error
	from, to *time.Time
}

func (f *fakeLister) ListTransactions(_ context.Context, _ int64, from, to *time.Time) ([]entity.Transaction, error) {
	f.from, f.to = from, to
	return f.txs, f.err
}

func sampleTransactions() []entity.Transaction {
	balance := decimal.RequireFromString("45000")
	return []entity.Transaction{
		{
			ID:            7,
			OperatorName:  "UPAY",
			DateTime:      time.Date(2024, 4, 5, 14, 30, 0, 0, time.UTC), // Friday
			OperationType: constants.OperationPayment,
			Amount:        decimal.RequireFromString("120000"),
			Currency:      "UZS",
			CardNumber:    "*4455",
			Balance:       &balance,
			ParsedBy:      "rules",
		},
		{
			ID:            12,
			DateTime:      time.Date(2024, 4, 7, 9, 0, 0, 0, time.UTC),
			OperationType: constants.OperationCancel,
			Amount:        decimal.RequireFromString("37.5"),
			Currency:      "USD",
			ParsedBy:      "llm",
		},
	}
}

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(Sheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	return rows
}

func TestExportTransactionsXLSX(t *testing.T) {
	lister := &fakeLister{txs: sampleTransactions()}
	svc := NewService(lister, nil)

	data, err := svc.ExportTransactionsXLSX(context.Background(), 42, nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows := readRows(t, data)
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Receipt No" || rows[0][8] != "Operation" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	checks := map[int]string{
		0: "CHK007",
		1: "2024-04-05 14:30:00",
		2: "ПТ",
		3: "UPAY",
		7: "*4455",
		8: "Оплата",
		9: "UZS",
	}
	for col, want := range checks {
		if first[col] != want {
			t.Errorf("row 1 col %d: expected %q, got %q", col, want, first[col])
		}
	}

	second := rows[2]
	if second[0] != "CHK012" || second[2] != "ВС" || second[8] != "Отмена" {
		t.Errorf("unexpected second row: %v", second)
	}
}

func TestExportTransactionsXLSXWindow(t *testing.T) {
	lister := &fakeLister{}
	svc := NewService(lister, nil)
	from := time.Date(2024, 4, 5, 13, 0, 0, 0, time.UTC)

	if _, err := svc.ExportTransactionsXLSX(context.Background(), 1, &from, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	if lister.from == nil || !lister.from.Equal(time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected lower bound at start of day, got %v", lister.from)
	}
	if lister.to == nil {
		t.Fatal("expected an upper bound when only from is given")
	}
	if lister.to.Hour() != 23 || lister.to.Minute() != 59 {
		t.Errorf("expected upper bound at end of day, got %v", lister.to)
	}
}

func TestExportTransactionsXLSXPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeLister{err: boom}, nil)
	if _, err := svc.ExportTransactionsXLSX(context.Background(), 1, nil, nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRowFromReceipt(t *testing.T) {
	amount := decimal.RequireFromString("6000000")
	r := entity.ParsedReceipt{
		DateTime:            "2025-04-04T18:47:00",
		OperationType:       constants.OperationPayment,
		Amount:              &amount,
		Currency:            "UZS",
		Operator:            "UPAY P2P",
		OperatorName:        "UPAY",
		OperatorApplication: "Upay",
	}
	row, err := RowFromReceipt("CHK001", r, "rules")
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	if row.Operator != "UPAY" || row.Application != "Upay" || row.DateTime.Day() != 4 {
		t.Errorf("unexpected row: %+v", row)
	}

	r.Amount = nil
	if _, err := RowFromReceipt("CHK002", r, "rules"); err == nil {
		t.Error("expected error for missing amount")
	}
	r.Amount = &amount
	r.DateTime = "yesterday"
	if _, err := RowFromReceipt("CHK003", r, "rules"); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("короткий", 20); got != "короткий" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("абвгдежз", 5); got != "абвг…" {
		t.Errorf("unexpected %q", got)
	}
}
