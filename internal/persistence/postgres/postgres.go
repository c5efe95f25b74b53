// Package postgres provides pgx-backed implementations of the store
// contracts.
package postgres

import (
	"fmt"

	"example.com/healthshare/internal/domain"
)

// unavailable tags a transport-level failure so callers can tell "couldn't
// ask" from "no data".
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
