package policy

import (
	"time"

	"example.com/healthshare/internal/domain"
)

// RecordVisible applies the retention cutoff at the sharing boundary: a
// record is visible while its timestamp is strictly before the owner's
// deletion date. A nil deletion date means no cutoff.
func RecordVisible(record domain.HealthRecord, deletionDate *time.Time) bool {
	if deletionDate == nil {
		return true
	}
	return record.Timestamp.Before(*deletionDate)
}

// FilterExpired returns the records still visible under the cutoff,
// preserving order.
func FilterExpired(records []domain.HealthRecord, deletionDate *time.Time) []domain.HealthRecord {
	if deletionDate == nil {
		return records
	}
	out := make([]domain.HealthRecord, 0, len(records))
	for _, rec := range records {
		if RecordVisible(rec, deletionDate) {
			out = append(out, rec)
		}
	}
	return out
}
