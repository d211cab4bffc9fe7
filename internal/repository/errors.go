package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Driver error codes that mean "the transaction lost a conflict and may be
// retried from the start".
var (
	retryablePgCodes = map[string]struct{}{
		"40001": {}, // serialization_failure
		"40P01": {}, // deadlock_detected
	}
	retryableMySQLNumbers = map[uint16]struct{}{
		1205: {}, // ER_LOCK_WAIT_TIMEOUT
		1213: {}, // ER_LOCK_DEADLOCK
	}
)

// IsRetryable reports whether err is a transaction conflict abort.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := retryablePgCodes[pgErr.Code]
		return ok
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		_, ok := retryableMySQLNumbers[myErr.Number]
		return ok
	}

	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	return false
}
