package postgres

import (
	"database/sql"
	"errors"
)

// isNotFound reports whether a Get returned no row. Repositories translate
// this into the (value, found, error) shape instead of surfacing sql errors.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
