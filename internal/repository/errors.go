package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrLockTimeout marks failures to acquire a row lock within the statement
// timeout. Callers may retry with backoff; the period state is unchanged.
var ErrLockTimeout = errors.New("no se pudo obtener el bloqueo de fila a tiempo")

// translateLockError maps PostgreSQL lock/cancel SQLSTATEs onto ErrLockTimeout
// so that services never have to inspect driver errors.
//   - 55P03 lock_not_available (SELECT ... FOR UPDATE NOWAIT / lock_timeout)
//   - 57014 query_canceled (statement_timeout fired while waiting)
func translateLockError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "57014":
			return ErrLockTimeout
		}
	}
	return err
}
