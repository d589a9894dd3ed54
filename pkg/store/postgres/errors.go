package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// transientPGCodes are PostgreSQL error codes the retry/failure fabric
// should treat as retryable rather than terminal: connection exceptions,
// serialization failures, and deadlocks.
var transientPGCodes = map[string]bool{
	"08000": true, // connection_exception
	"08003": true, // connection_does_not_exist
	"08006": true, // connection_failure
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"57P03": true, // cannot_connect_now
}

// pgTransientError wraps a database error with a Transient method so
// [resilience.Classify] can recognise it as retryable without importing pgx.
type pgTransientError struct {
	err error
}

func (e *pgTransientError) Error() string { return e.err.Error() }
func (e *pgTransientError) Unwrap() error { return e.err }
func (e *pgTransientError) Transient() bool {
	var pgErr *pgconn.PgError
	if errors.As(e.err, &pgErr) {
		return transientPGCodes[pgErr.Code]
	}
	return false
}

// wrapTransient wraps err so the retry/failure fabric can classify it via
// its Transient() method, matching storage-transport/connection-error
// retryability.
func wrapTransient(err error) error {
	if err == nil {
		return nil
	}
	return &pgTransientError{err: err}
}
