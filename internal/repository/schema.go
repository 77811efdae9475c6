package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
    username TEXT PRIMARY KEY,
    password TEXT NOT NULL,
    role TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS students (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    year_level TEXT NOT NULL DEFAULT '',
    semester TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS teachers (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    department TEXT NOT NULL DEFAULT '',
    position TEXT NOT NULL DEFAULT '',
    assigned_subjects TEXT[] NOT NULL DEFAULT '{}'
)`,
	`CREATE TABLE IF NOT EXISTS subjects (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    units INTEGER NOT NULL CHECK (units > 0),
    department TEXT NOT NULL DEFAULT '',
    year_level TEXT NOT NULL DEFAULT '',
    semester TEXT NOT NULL DEFAULT '',
    prerequisites TEXT[] NOT NULL DEFAULT '{}'
)`,
	`CREATE TABLE IF NOT EXISTS enrollments (
    seq BIGSERIAL,
    student_id TEXT NOT NULL,
    year_level TEXT NOT NULL,
    semester TEXT NOT NULL,
    status TEXT NOT NULL,
    subjects JSONB NOT NULL DEFAULT '[]',
    PRIMARY KEY (student_id, year_level, semester)
)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_seq ON enrollments (seq)`,
}

// EnsureSchema creates the record store tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
