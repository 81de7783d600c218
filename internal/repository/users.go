package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

const usersTable = "users"

type UserRepository interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error)
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*entity.User, error)
}

type userRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewUserRepository(db *DB, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{db: db, logger: logger}
}

// GetByTelegramID returns common.ErrNotFound when the user does not exist.
func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error) {
	sel := r.db.builder().
		Select("id", "telegram_id", "username", "created_at").
		From(r.db.builder().Table(usersTable)).
		Where(entsql.EQ("telegram_id", telegramID))
	rows, err := r.db.query(ctx, sel)
	if err != nil {
		r.logger.Error("failed to query user", "telegram_id", telegramID, "error", err)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		return nil, fmt.Errorf("%w: user with telegram id %d", common.ErrNotFound, telegramID)
	}
	var u entity.User
	if err := rows.Scan(&u.ID, &u.TelegramID, &u.Username, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: scan user: %v", common.ErrDatabase, err)
	}
	return &u, nil
}

func (r *userRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*entity.User, error) {
	u, err := r.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return u, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	id, err := r.db.insertReturningID(ctx, r.db.builder().
		Insert(usersTable).
		Columns("telegram_id", "username", "created_at").
		Values(telegramID, username, now))
	if err != nil {
		// a concurrent insert of the same telegram id wins; read it back
		if existing, getErr := r.GetByTelegramID(ctx, telegramID); getErr == nil {
			return existing, nil
		}
		r.logger.Error("failed to create user", "telegram_id", telegramID, "error", err)
		return nil, err
	}

	r.logger.Info("user created", "user_id", id, "telegram_id", telegramID)
	return &entity.User{ID: id, TelegramID: telegramID, Username: username, CreatedAt: now}, nil
}
