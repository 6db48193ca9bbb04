// Package repository implements the catalog persistence port over SQLite.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"fibermeta/internal/domain"
)

// mapDBError translates backing-store errors into domain errors. Uniqueness
// violations surface as ConflictError so concurrent creates of the same name
// resolve to "already exists" rather than a generic failure.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("resource not found")
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrConflict("resource already exists")
	}
	return err
}
