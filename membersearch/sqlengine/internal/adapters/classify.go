package adapters

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

// SQLSTATE classes that mean the store could not serve the request, as opposed to refusing it.
const (
	sqlStateClassConnectionException   = "08"
	sqlStateClassInsufficientResources = "53"
	sqlStateClassOperatorIntervention  = "57"
	sqlStateClassLength                = 2
)

// ClassifyError maps a driver error to membersearch.ErrStoreUnavailable or membersearch.ErrStoreQueryRejected.
// Errors that carry no server verdict (context cancellation, closed pools, network errors) count as unavailable.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(string(pqErr.Code))
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_INTERRUPT:
			return membersearch.ErrStoreUnavailable
		default:
			return membersearch.ErrStoreQueryRejected
		}
	}

	return membersearch.ErrStoreUnavailable
}

func classifySQLState(code string) error {
	if len(code) < sqlStateClassLength {
		return membersearch.ErrStoreUnavailable
	}

	switch code[:sqlStateClassLength] {
	case sqlStateClassConnectionException, sqlStateClassInsufficientResources, sqlStateClassOperatorIntervention:
		return membersearch.ErrStoreUnavailable
	default:
		return membersearch.ErrStoreQueryRejected
	}
}

// classified joins the classification sentinel onto err, keeping err itself inspectable.
func classified(err error) error {
	if err == nil {
		return nil
	}

	return errors.Join(ClassifyError(err), err)
}
