package repository

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		telegram_id BIGINT NOT NULL UNIQUE,
		username TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS operators (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		user_id BIGINT REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS operators_user_id_idx ON operators (user_id)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		operator_id BIGINT REFERENCES operators(id) ON DELETE SET NULL,
		date_time TIMESTAMPTZ NOT NULL,
		operation_type TEXT NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		currency TEXT NOT NULL DEFAULT '',
		card_number TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		balance NUMERIC(18,2),
		raw_text TEXT NOT NULL,
		parsed_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_date_idx ON transactions (user_id, date_time)`,
}

// amounts are TEXT in sqlite so decimals round-trip exactly
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		telegram_id INTEGER NOT NULL UNIQUE,
		username TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS operators (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS operators_user_id_idx ON operators (user_id)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		operator_id INTEGER REFERENCES operators(id) ON DELETE SET NULL,
		date_time DATETIME NOT NULL,
		operation_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT '',
		card_number TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		balance TEXT,
		raw_text TEXT NOT NULL,
		parsed_by TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_date_idx ON transactions (user_id, date_time)`,
}
