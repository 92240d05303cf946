package database

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
)

var savepointName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// WithSavepoint runs fn inside a savepoint of tx. When fn fails the savepoint is
// rolled back so the outer transaction stays usable, and fn's error is returned.
func WithSavepoint(ctx context.Context, tx *sqlx.Tx, name string, fn func() error) error {
	if !savepointName.MatchString(name) {
		return fmt.Errorf("invalid savepoint name %q", name)
	}
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("create savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("rollback savepoint %s: %v (original: %w)", name, rbErr, err)
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	return nil
}
