package receipts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
	"github.com/joseph-ayodele/tbcparser/internal/pipeline"
	"github.com/joseph-ayodele/tbcparser/internal/repository"
)

const globalCacheKey = "operators:global"

// DuplicateError reports that the user already stored a receipt with the same text.
type DuplicateError struct {
	Existing *entity.Transaction
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate transaction: already stored as %d", e.Existing.ID)
}

func (e *DuplicateError) Is(target error) bool {
	return target == common.ErrDuplicate
}

type Options struct {
	// OperatorCacheTTL bounds how long operator lists are reused between parses.
	OperatorCacheTTL time.Duration
	// ParsedBy is recorded on stored transactions ("rules", "llm").
	ParsedBy string
}

// Service parses receipts for users and stores them as transactions.
type Service struct {
	pipeline     *pipeline.Pipeline
	users        repository.UserRepository
	operators    repository.OperatorRepository
	transactions repository.TransactionRepository
	operatorSets *cache.Cache
	parsedBy     string
	logger       *slog.Logger
}

func NewService(
	p *pipeline.Pipeline,
	users repository.UserRepository,
	operators repository.OperatorRepository,
	transactions repository.TransactionRepository,
	opts Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.OperatorCacheTTL <= 0 {
		opts.OperatorCacheTTL = time.Minute
	}
	if opts.ParsedBy == "" {
		opts.ParsedBy = "rules"
	}
	return &Service{
		pipeline:     p,
		users:        users,
		operators:    operators,
		transactions: transactions,
		operatorSets: cache.New(opts.OperatorCacheTTL, 2*opts.OperatorCacheTTL),
		parsedBy:     opts.ParsedBy,
		logger:       logger,
	}
}

// OperatorRecords returns the known operators for a caller. Unknown or absent callers
// get the global operators only.
func (s *Service) OperatorRecords(ctx context.Context, telegramID *int64) ([]entity.OperatorRecord, error) {
	if telegramID == nil {
		return s.globalRecords(ctx)
	}
	user, err := s.users.GetByTelegramID(ctx, *telegramID)
	if errors.Is(err, common.ErrNotFound) {
		return s.globalRecords(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.userRecords(ctx, user.ID)
}

// FlushOperatorCache drops every cached operator list.
func (s *Service) FlushOperatorCache() {
	s.operatorSets.Flush()
	s.logger.Info("receipts.operator_cache.flushed")
}

// ParseReceipt runs the pipeline with the caller's operator records.
func (s *Service) ParseReceipt(ctx context.Context, text string, telegramID *int64) (entity.ParsedReceipt, error) {
	if strings.TrimSpace(text) == "" {
		return entity.ParsedReceipt{}, fmt.Errorf("%w: receipt text is required", common.ErrInvalidInput)
	}
	records, err := s.OperatorRecords(ctx, telegramID)
	if err != nil {
		return entity.ParsedReceipt{}, err
	}
	return s.pipeline.Parse(ctx, text, records)
}

// BatchParse parses texts independently with one operator lookup for the whole batch.
func (s *Service) BatchParse(ctx context.Context, texts []string, telegramID *int64) ([]pipeline.BatchResult, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: at least one receipt text is required", common.ErrInvalidInput)
	}
	records, err := s.OperatorRecords(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Batch(ctx, texts, records), nil
}

// ParseAndStore parses text for the user and persists it. A receipt already stored with
// the same text yields *DuplicateError.
func (s *Service) ParseAndStore(ctx context.Context, text string, telegramID int64, username string) (*entity.Transaction, entity.ParsedReceipt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, entity.ParsedReceipt{}, fmt.Errorf("%w: receipt text is required", common.ErrInvalidInput)
	}

	user, err := s.users.GetOrCreate(ctx, telegramID, username)
	if err != nil {
		return nil, entity.ParsedReceipt{}, err
	}

	existing, err := s.transactions.FindByRawText(ctx, user.ID, text)
	switch {
	case err == nil:
		s.logger.Info("receipts.store.duplicate", "user_id", user.ID, "transaction_id", existing.ID)
		return nil, entity.ParsedReceipt{}, &DuplicateError{Existing: existing}
	case !errors.Is(err, common.ErrNotFound):
		return nil, entity.ParsedReceipt{}, err
	}

	records, err := s.userRecords(ctx, user.ID)
	if err != nil {
		return nil, entity.ParsedReceipt{}, err
	}
	receipt, err := s.pipeline.Parse(ctx, text, records)
	if err != nil {
		return nil, entity.ParsedReceipt{}, err
	}

	tx, err := s.toTransaction(ctx, receipt, user.ID, text)
	if err != nil {
		return nil, receipt, err
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, receipt, err
	}

	s.logger.Info("receipts.store.ok",
		"user_id", user.ID,
		"transaction_id", tx.ID,
		"operator_id", tx.OperatorID,
		"operation_type", tx.OperationType)
	return tx, receipt, nil
}

// ListTransactions returns the stored transactions of a telegram user.
func (s *Service) ListTransactions(ctx context.Context, telegramID int64, from, to *time.Time) ([]entity.Transaction, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return s.transactions.List(ctx, user.ID, from, to)
}

func (s *Service) toTransaction(ctx context.Context, r entity.ParsedReceipt, userID int64, raw string) (*entity.Transaction, error) {
	when, err := common.ParseISODateTime(r.DateTime)
	if err != nil {
		return nil, err
	}
	if r.Amount == nil {
		return nil, fmt.Errorf("%w: amount is required", common.ErrValidation)
	}
	operatorID, err := s.resolveOperatorID(ctx, r, userID)
	if err != nil {
		return nil, err
	}

	currency := r.Currency
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	return &entity.Transaction{
		UserID:        userID,
		OperatorID:    operatorID,
		DateTime:      when,
		OperationType: r.OperationType,
		Amount:        *r.Amount,
		Currency:      currency,
		CardNumber:    r.CardNumber,
		Description:   r.Description,
		Balance:       r.Balance,
		RawText:       raw,
		ParsedBy:      s.parsedBy,
	}, nil
}

// resolveOperatorID checks a matched operator id against ownership, else searches
// operators by the receipt description.
func (s *Service) resolveOperatorID(ctx context.Context, r entity.ParsedReceipt, userID int64) (*int64, error) {
	if r.OperatorID != nil {
		op, err := s.operators.GetByID(ctx, *r.OperatorID)
		if err != nil {
			return nil, err
		}
		if op.UserID != nil && *op.UserID != userID {
			return nil, fmt.Errorf("%w: operator %d does not belong to user", common.ErrForbidden, op.ID)
		}
		return &op.ID, nil
	}
	if strings.TrimSpace(r.Description) == "" {
		return nil, nil
	}
	op, err := s.operators.FindByDescription(ctx, r.Description, &userID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &op.ID, nil
}

func (s *Service) globalRecords(ctx context.Context) ([]entity.OperatorRecord, error) {
	if v, ok := s.operatorSets.Get(globalCacheKey); ok {
		return v.([]entity.OperatorRecord), nil
	}
	ops, err := s.operators.ListGlobal(ctx)
	if err != nil {
		return nil, err
	}
	records := entity.OperatorRecords(ops)
	s.operatorSets.SetDefault(globalCacheKey, records)
	return records, nil
}

func (s *Service) userRecords(ctx context.Context, userID int64) ([]entity.OperatorRecord, error) {
	key := "operators:user:" + strconv.FormatInt(userID, 10)
	if v, ok := s.operatorSets.Get(key); ok {
		return v.([]entity.OperatorRecord), nil
	}
	ops, err := s.operators.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	records := entity.OperatorRecords(ops)
	s.operatorSets.SetDefault(key, records)
	return records, nil
}
