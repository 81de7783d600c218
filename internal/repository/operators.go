package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

const operatorsTable = "operators"

var operatorColumns = []string{"id", "name", "description", "user_id", "created_at"}

type OperatorRepository interface {
	// ListForUser returns the user's own operators first, then global operators whose
	// name is not overridden by one of them.
	ListForUser(ctx context.Context, userID int64) ([]entity.Operator, error)
	ListGlobal(ctx context.Context) ([]entity.Operator, error)
	GetByID(ctx context.Context, id int64) (*entity.Operator, error)
	Create(ctx context.Context, op *entity.Operator) error
	// FindByDescription matches an operator whose name occurs in text, then one whose
	// description shares a word with text. A nil userID searches global operators only.
	FindByDescription(ctx context.Context, text string, userID *int64) (*entity.Operator, error)
}

type operatorRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewOperatorRepository(db *DB, logger *slog.Logger) OperatorRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &operatorRepository{db: db, logger: logger}
}

func (r *operatorRepository) ListForUser(ctx context.Context, userID int64) ([]entity.Operator, error) {
	personal, err := r.list(ctx, entsql.EQ("user_id", userID))
	if err != nil {
		return nil, err
	}
	global, err := r.ListGlobal(ctx)
	if err != nil {
		return nil, err
	}

	overridden := make(map[string]struct{}, len(personal))
	for _, op := range personal {
		overridden[op.Name] = struct{}{}
	}
	out := personal
	for _, op := range global {
		if _, ok := overridden[op.Name]; ok {
			continue
		}
		out = append(out, op)
	}
	return out, nil
}

func (r *operatorRepository) ListGlobal(ctx context.Context) ([]entity.Operator, error) {
	return r.list(ctx, entsql.IsNull("user_id"))
}

func (r *operatorRepository) GetByID(ctx context.Context, id int64) (*entity.Operator, error) {
	ops, err := r.list(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: operator %d", common.ErrNotFound, id)
	}
	return &ops[0], nil
}

func (r *operatorRepository) Create(ctx context.Context, op *entity.Operator) error {
	name := strings.TrimSpace(op.Name)
	if name == "" {
		return fmt.Errorf("%w: operator name is required", common.ErrInvalidInput)
	}
	if op.UserID != nil {
		exists, err := r.nameTaken(ctx, name, *op.UserID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: operator %q already exists", common.ErrDuplicate, name)
		}
	}

	now := time.Now().UTC()
	var userID sql.NullInt64
	if op.UserID != nil {
		userID = sql.NullInt64{Int64: *op.UserID, Valid: true}
	}
	id, err := r.db.insertReturningID(ctx, r.db.builder().
		Insert(operatorsTable).
		Columns("name", "description", "user_id", "created_at").
		Values(name, strings.TrimSpace(op.Description), userID, now))
	if err != nil {
		r.logger.Error("failed to create operator", "name", name, "error", err)
		return err
	}

	op.ID = id
	op.Name = name
	op.Description = strings.TrimSpace(op.Description)
	op.CreatedAt = now
	r.logger.Info("operator created", "operator_id", id, "name", name, "global", op.IsGlobal())
	return nil
}

func (r *operatorRepository) FindByDescription(ctx context.Context, text string, userID *int64) (*entity.Operator, error) {
	var (
		ops []entity.Operator
		err error
	)
	if userID != nil {
		ops, err = r.ListForUser(ctx, *userID)
	} else {
		ops, err = r.ListGlobal(ctx)
	}
	if err != nil {
		return nil, err
	}
	if op, ok := MatchOperatorText(ops, text); ok {
		return &op, nil
	}
	return nil, fmt.Errorf("%w: no operator matches description", common.ErrNotFound)
}

// MatchOperatorText applies the name-then-keyword description match to ops in order.
func MatchOperatorText(ops []entity.Operator, text string) (entity.Operator, bool) {
	lowered := strings.ToLower(text)
	if strings.TrimSpace(lowered) == "" {
		return entity.Operator{}, false
	}
	for _, op := range ops {
		name := strings.ToLower(strings.TrimSpace(op.Name))
		if name != "" && strings.Contains(lowered, name) {
			return op, true
		}
	}
	for _, op := range ops {
		for _, kw := range strings.Fields(strings.ToLower(op.Description)) {
			if strings.Contains(lowered, kw) {
				return op, true
			}
		}
	}
	return entity.Operator{}, false
}

func (r *operatorRepository) nameTaken(ctx context.Context, name string, userID int64) (bool, error) {
	ops, err := r.list(ctx, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("name", name)))
	if err != nil {
		return false, err
	}
	return len(ops) > 0, nil
}

func (r *operatorRepository) list(ctx context.Context, where *entsql.Predicate) ([]entity.Operator, error) {
	sel := r.db.builder().
		Select(operatorColumns...).
		From(r.db.builder().Table(operatorsTable)).
		Where(where).
		OrderBy("id")
	rows, err := r.db.query(ctx, sel)
	if err != nil {
		r.logger.Error("failed to list operators", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []entity.Operator
	for rows.Next() {
		var (
			op     entity.Operator
			userID sql.NullInt64
		)
		if err := rows.Scan(&op.ID, &op.Name, &op.Description, &userID, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan operator: %v", common.ErrDatabase, err)
		}
		if userID.Valid {
			id := userID.Int64
			op.UserID = &id
		}
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}
