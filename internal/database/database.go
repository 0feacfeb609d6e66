package database

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"hellmusic/internal/logging"
	"hellmusic/internal/models"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

const memoryPath = ":memory:"

// DB is the SQLite implementation of the document store. Each collection of the
// document model maps to a table; list-backed sets keep one row per member.
type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	log := logging.Component(logger, "sqlite")

	if path != memoryPath {
		// Создаем директорию для БД, если её нет
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == memoryPath {
		// every new connection would get its own empty in-memory database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Info().Str("path", path).Msg("Database initialized")
	return &DB{DB: sqlDB, path: path, logger: log}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// user_id is not unique: AddUser is a plain insert
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            join_date DATETIME NOT NULL,
            songs_played INTEGER NOT NULL DEFAULT 0,
            level INTEGER NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS chats (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            chat_id INTEGER NOT NULL,
            join_date DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS flags (
            name TEXT PRIMARY KEY,
            status BOOLEAN NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS set_members (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            set_name TEXT NOT NULL,
            member_id INTEGER NOT NULL,
            added_at DATETIME NOT NULL,
            UNIQUE(set_name, member_id)
        )`,
		`CREATE TABLE IF NOT EXISTS auth_users (
            chat_id INTEGER NOT NULL,
            user_id INTEGER NOT NULL,
            details TEXT NOT NULL DEFAULT '{}',
            updated_at DATETIME NOT NULL,
            PRIMARY KEY (chat_id, user_id)
        )`,

		`CREATE INDEX IF NOT EXISTS idx_users_user_id ON users(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chats_chat_id ON chats(chat_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Backend() string {
	return models.DriverSQLite
}

// Path returns the database file the store was opened with.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close(_ context.Context) error {
	return db.DB.Close()
}

// scanSeq runs query and yields one scanned value per row. The rows stay open
// until the consumer stops iterating, so callers must not issue further store
// calls from inside the loop on an in-memory database.
func scanSeq[T any](ctx context.Context, db *DB, query string, scan func(*sql.Rows) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			yield(zero, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, err)
		}
	}
}
