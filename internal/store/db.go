package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and applies the
// schema.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return &DB{Client: db}, err
	}
	if err := migrate(db); err != nil {
		return &DB{Client: db}, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS departments (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT UNIQUE NOT NULL,
		username      TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('admin','student')),
		student_id    TEXT UNIQUE,
		department_id TEXT REFERENCES departments(id) ON DELETE SET NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (role <> 'student' OR student_id IS NOT NULL)
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date           DATE NOT NULL,
		status         TEXT NOT NULL CHECK (status IN ('present','absent','late','pending')),
		clock_in_time  TIME,
		clock_out_time TIME,
		UNIQUE (user_id, date)
	);

	CREATE TABLE IF NOT EXISTS attendance_logs (
		id        TEXT PRIMARY KEY,
		user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		action    TEXT NOT NULL CHECK (action IN ('login','logout'))
	);

	CREATE TABLE IF NOT EXISTS school_events (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT,
		date        DATE NOT NULL,
		location    TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS refresh_tokens (
		token      TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked    BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_records_date ON attendance_records(date);
	CREATE INDEX IF NOT EXISTS idx_attendance_logs_user    ON attendance_logs(user_id);
	CREATE INDEX IF NOT EXISTS idx_school_events_date      ON school_events(date);
	`
	_, err := db.Exec(schema)
	return err
}

// Healthy verifies database connectivity.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
