package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

const Sheet = "Transactions"

var headers = []string{
	"Receipt No",
	"Date/Time",
	"Weekday",
	"Operator",
	"Application",
	"Amount",
	"Balance",
	"Card",
	"Operation",
	"Currency",
	"Description",
	"Source",
}

var operationLabels = map[constants.OperationType]string{
	constants.OperationPayment:    "Оплата",
	constants.OperationRefill:     "Пополнение",
	constants.OperationConversion: "Конверсия",
	constants.OperationCancel:     "Отмена",
}

var weekdays = [...]string{"ВС", "ПН", "ВТ", "СР", "ЧТ", "ПТ", "СБ"}

// Row is one spreadsheet line.
type Row struct {
	Number        string
	DateTime      time.Time
	Operator      string
	Application   string
	Amount        decimal.Decimal
	Balance       *decimal.Decimal
	CardNumber    string
	OperationType constants.OperationType
	Currency      string
	Description   string
	Source        string
}

// RowsFromTransactions converts stored transactions, keeping their order.
func RowsFromTransactions(txs []entity.Transaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, Row{
			Number:        fmt.Sprintf("CHK%03d", tx.ID),
			DateTime:      tx.DateTime,
			Operator:      tx.OperatorName,
			Amount:        tx.Amount,
			Balance:       tx.Balance,
			CardNumber:    tx.CardNumber,
			OperationType: tx.OperationType,
			Currency:      tx.Currency,
			Description:   tx.Description,
			Source:        tx.ParsedBy,
		})
	}
	return rows
}

// RowFromReceipt converts a parsed receipt that was not stored. Receipts without a
// valid date or amount are rejected.
func RowFromReceipt(number string, r entity.ParsedReceipt, source string) (Row, error) {
	when, err := common.ParseISODateTime(r.DateTime)
	if err != nil {
		return Row{}, err
	}
	if r.Amount == nil {
		return Row{}, fmt.Errorf("%w: amount is required", common.ErrValidation)
	}
	operator := r.OperatorName
	if operator == "" {
		operator = r.Operator
	}
	return Row{
		Number:        number,
		DateTime:      when,
		Operator:      operator,
		Application:   r.OperatorApplication,
		Amount:        *r.Amount,
		Balance:       r.Balance,
		CardNumber:    r.CardNumber,
		OperationType: r.OperationType,
		Currency:      r.Currency,
		Description:   r.Description,
		Source:        source,
	}, nil
}

// WriteXLSX renders rows into a workbook with a single Transactions sheet.
func WriteXLSX(rows []Row) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), Sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(Sheet, cell, h)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	_ = f.SetRowStyle(Sheet, 1, 1, bold)

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(Sheet, cell, v)
		}

		write(1, r.Number)
		if !r.DateTime.IsZero() {
			write(2, r.DateTime.Format("2006-01-02 15:04:05"))
			write(3, weekdays[r.DateTime.Weekday()])
		}
		write(4, r.Operator)
		write(5, r.Application)
		write(6, r.Amount.InexactFloat64())
		if r.Balance != nil {
			write(7, r.Balance.InexactFloat64())
		}
		write(8, r.CardNumber)
		write(9, operationLabel(r.OperationType))
		write(10, r.Currency)
		write(11, truncate(r.Description, 140))
		write(12, r.Source)
	}
	if len(rows) > 0 {
		last := len(rows) + 1
		_ = f.SetCellStyle(Sheet, "F2", fmt.Sprintf("G%d", last), money)
	}

	_ = f.SetColWidth(Sheet, "A", "A", 10)
	_ = f.SetColWidth(Sheet, "B", "B", 20)
	_ = f.SetColWidth(Sheet, "C", "C", 8)
	_ = f.SetColWidth(Sheet, "D", "E", 28)
	_ = f.SetColWidth(Sheet, "F", "G", 16)
	_ = f.SetColWidth(Sheet, "H", "J", 12)
	_ = f.SetColWidth(Sheet, "K", "K", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf, nil
}

// TransactionLister is the storage side of the export.
type TransactionLister interface {
	ListTransactions(ctx context.Context, telegramID int64, from, to *time.Time) ([]entity.Transaction, error)
}

// Service produces XLSX bytes for stored transactions.
type Service struct {
	source TransactionLister
	logger *slog.Logger
}

func NewService(source TransactionLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger}
}

// ExportTransactionsXLSX returns a workbook for the user's transactions in the window.
// Bounds are whole days; an open upper bound with a lower bound means "until today".
func (s *Service) ExportTransactionsXLSX(ctx context.Context, telegramID int64, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	txs, err := s.source.ListTransactions(ctx, telegramID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	buf, err := WriteXLSX(RowsFromTransactions(txs))
	if err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		"telegram_id", telegramID,
		"rows", len(txs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func operationLabel(op constants.OperationType) string {
	if label, ok := operationLabels[op]; ok {
		return label
	}
	return string(op)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
