package policy

import (
	"fmt"

	"example.com/healthshare/internal/domain"
)

// FetchFailure describes one owner-level or (owner, type)-level fetch error
// collected during a resolution fan-out. Type is empty when the owner's
// settings lookup itself failed.
type FetchFailure struct {
	OwnerID string
	Type    domain.RecordType
	Err     error
}

func (f FetchFailure) String() string {
	if f.Type == "" {
		return fmt.Sprintf("owner %s: %v", f.OwnerID, f.Err)
	}
	return fmt.Sprintf("owner %s type %s: %v", f.OwnerID, f.Type, f.Err)
}

// PartialFailure is returned alongside partial results when some owners or
// types failed mid fan-out. The successful owners are still delivered; one
// owner's failure never aborts the batch.
type PartialFailure struct {
	Failures []FetchFailure
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("resolution completed with %d failed fetches", len(e.Failures))
}
