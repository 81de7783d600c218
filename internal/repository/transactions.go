package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

const transactionsTable = "transactions"

var transactionColumns = []string{
	"id", "user_id", "operator_id", "date_time", "operation_type", "amount", "currency",
	"card_number", "description", "balance", "raw_text", "parsed_by", "created_at",
}

type TransactionRepository interface {
	// FindByRawText returns common.ErrNotFound when the user has no transaction with this text.
	FindByRawText(ctx context.Context, userID int64, rawText string) (*entity.Transaction, error)
	Create(ctx context.Context, tx *entity.Transaction) error
	// List returns the user's transactions ordered by date; nil bounds are open.
	List(ctx context.Context, userID int64, from, to *time.Time) ([]entity.Transaction, error)
}

type transactionRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewTransactionRepository(db *DB, logger *slog.Logger) TransactionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &transactionRepository{db: db, logger: logger}
}

func (r *transactionRepository) FindByRawText(ctx context.Context, userID int64, rawText string) (*entity.Transaction, error) {
	txs, err := r.list(ctx, entsql.And(
		entsql.EQ(r.col("user_id"), userID),
		entsql.EQ(r.col("raw_text"), rawText),
	), 1)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: transaction", common.ErrNotFound)
	}
	return &txs[0], nil
}

func (r *transactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	now := time.Now().UTC()
	var (
		operatorID sql.NullInt64
		balance    decimal.NullDecimal
	)
	if tx.OperatorID != nil {
		operatorID = sql.NullInt64{Int64: *tx.OperatorID, Valid: true}
	}
	if tx.Balance != nil {
		balance = decimal.NullDecimal{Decimal: *tx.Balance, Valid: true}
	}

	id, err := r.db.insertReturningID(ctx, r.db.builder().
		Insert(transactionsTable).
		Columns(transactionColumns[1:]...).
		Values(
			tx.UserID, operatorID, tx.DateTime.UTC(), string(tx.OperationType), tx.Amount, tx.Currency,
			tx.CardNumber, tx.Description, balance, tx.RawText, tx.ParsedBy, now,
		))
	if err != nil {
		r.logger.Error("failed to create transaction", "user_id", tx.UserID, "error", err)
		return err
	}

	tx.ID = id
	tx.CreatedAt = now
	r.logger.Info("transaction stored", "transaction_id", id, "user_id", tx.UserID, "operator_id", tx.OperatorID)
	return nil
}

func (r *transactionRepository) List(ctx context.Context, userID int64, from, to *time.Time) ([]entity.Transaction, error) {
	preds := []*entsql.Predicate{entsql.EQ(r.col("user_id"), userID)}
	if from != nil {
		preds = append(preds, entsql.GTE(r.col("date_time"), from.UTC()))
	}
	if to != nil {
		preds = append(preds, entsql.LTE(r.col("date_time"), to.UTC()))
	}
	return r.list(ctx, entsql.And(preds...), 0)
}

func (r *transactionRepository) col(name string) string {
	return r.db.builder().Table(transactionsTable).C(name)
}

func (r *transactionRepository) list(ctx context.Context, where *entsql.Predicate, limit int) ([]entity.Transaction, error) {
	b := r.db.builder()
	t := b.Table(transactionsTable)
	o := b.Table(operatorsTable)

	sel := b.Select(append(t.Columns(transactionColumns...), o.C("name"))...).
		From(t).
		LeftJoin(o).On(t.C("operator_id"), o.C("id")).
		Where(where).
		OrderBy(t.C("date_time"), t.C("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	rows, err := r.db.query(ctx, sel)
	if err != nil {
		r.logger.Error("failed to list transactions", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []entity.Transaction
	for rows.Next() {
		var (
			tx           entity.Transaction
			operatorID   sql.NullInt64
			balance      decimal.NullDecimal
			opType       string
			operatorName sql.NullString
		)
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &operatorID, &tx.DateTime, &opType, &tx.Amount, &tx.Currency,
			&tx.CardNumber, &tx.Description, &balance, &tx.RawText, &tx.ParsedBy, &tx.CreatedAt,
			&operatorName,
		); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %v", common.ErrDatabase, err)
		}
		tx.OperationType = constants.OperationType(opType)
		if operatorID.Valid {
			id := operatorID.Int64
			tx.OperatorID = &id
		}
		if balance.Valid {
			v := balance.Decimal
			tx.Balance = &v
		}
		tx.OperatorName = operatorName.String
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}
