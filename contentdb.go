package scitech

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the SQLite store: generated content cache and quiz history
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_results (
			id TEXT PRIMARY KEY,
			grade_id TEXT NOT NULL,
			topic_id TEXT NOT NULL,
			topic_title TEXT NOT NULL,
			score INTEGER NOT NULL,
			max_score INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS quiz_results_created_at ON quiz_results(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// Get implements Cache
func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64
	err := db.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?",
		key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}
	if expiresAt != 0 && db.now().Unix() >= expiresAt {
		return nil, false, nil
	}
	return value, true, nil
}

// Set implements Cache
func (db *DB) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = db.now().Add(ttl).Unix()
	}
	_, err := db.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set cache entry %s: %w", key, err)
	}
	return nil
}

// DeleteExpired removes cache entries whose ttl has passed
func (db *DB) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := db.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE expires_at != 0 AND expires_at <= ?",
		db.now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return res.RowsAffected()
}

// CreateQuizResult stores a finished quiz. ID and CreatedAt are filled in when empty.
func (db *DB) CreateQuizResult(ctx context.Context, result *QuizResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = db.now()
	}
	_, err := db.db.ExecContext(ctx,
		"INSERT INTO quiz_results (id, grade_id, topic_id, topic_title, score, max_score, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		result.ID, result.GradeID, result.TopicID, result.TopicTitle, result.Score, result.MaxScore, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// RecentResults returns the latest quiz results, newest first
func (db *DB) RecentResults(ctx context.Context, limit int) ([]QuizResult, error) {
	query := "SELECT id, grade_id, topic_id, topic_title, score, max_score, created_at FROM quiz_results ORDER BY created_at DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	defer rows.Close()

	var results []QuizResult
	for rows.Next() {
		var r QuizResult
		if err := rows.Scan(&r.ID, &r.GradeID, &r.TopicID, &r.TopicTitle, &r.Score, &r.MaxScore, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz result: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quiz results: %w", err)
	}
	return results, nil
}
