package utils

import (
	"database/sql"
	"fmt"
)

// RowsAffectedOr returns noRowsErr when a mutation matched nothing.
// Repositories use it after UPDATE/DELETE statements to surface not-found
// or invalid-state without a second lookup.
func RowsAffectedOr(result sql.Result, noRowsErr error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return noRowsErr
	}
	return nil
}
