package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
)

const (
	uniqueViolation   = "23505"
	numericOutOfRange = "22003"
)

func isUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

func isOutOfRange(err error) bool {
	return hasCode(err, numericOutOfRange)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// asStorage leaves application errors alone and wraps driver errors, such as
// a failed commit, as storage errors.
func asStorage(details string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewStorage(details, err)
}
