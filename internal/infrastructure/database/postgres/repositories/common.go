package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// dbError wraps a driver error with ErrCodeDatabaseError.
func dbError(err error, format string, args ...interface{}) error {
	return errors.Wrap(err, errors.ErrCodeDatabaseError, fmt.Sprintf(format, args...))
}

func isNoRows(err error) bool { return stderrors.Is(err, sql.ErrNoRows) }

//Personal.AI order the ending
