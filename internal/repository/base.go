// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"conduit/internal/database"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, pgUniqueViolation)
}

// violatedColumn reports which of columns a unique violation names, or "".
// Postgres carries the index name, SQLite the table.column pair.
func violatedColumn(err error, columns ...string) string {
	var pgErr *pgconn.PgError
	hint := strings.ToLower(err.Error())
	if errors.As(err, &pgErr) {
		hint = strings.ToLower(pgErr.ConstraintName + " " + pgErr.Detail)
	}
	for _, col := range columns {
		if strings.Contains(hint, col) {
			return col
		}
	}
	return ""
}
