package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// inTx runs fn in a transaction, committing when fn succeeds and rolling back otherwise.
// Errors from fn are returned unchanged.
func inTx(ctx context.Context, db txProvider, fn func(tx *sqlx.Tx) error) (err error) {
	if db == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Internal(err, "failed to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Internal(err, "failed to commit transaction")
	}
	return nil
}

func internalError(err error, message string) error {
	return appErrors.Internal(err, message)
}

func validationError(err error, message string) error {
	return appErrors.Invalid(err, message)
}
