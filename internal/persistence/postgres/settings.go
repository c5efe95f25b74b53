package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/healthshare/internal/domain"
)

// SettingsRepository provides Postgres-backed persistence for per-(owner,
// group) sharing settings documents.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Settings returns nil when no document exists for the pair; absence is not
// an error, callers fall back to the open-by-default policy.
func (r *SettingsRepository) Settings(ctx context.Context, ownerID, groupID string) (*domain.SharingSettings, error) {
	const query = `SELECT owner_id, group_id, is_anonymous, display_name_override, deletion_date, visibility
        FROM sharing_settings WHERE owner_id = $1 AND group_id = $2`

	row := r.pool.QueryRow(ctx, query, ownerID, groupID)

	var (
		settings      domain.SharingSettings
		rawVisibility []byte
	)
	if err := row.Scan(&settings.OwnerID, &settings.GroupID, &settings.IsAnonymous, &settings.DisplayNameOverride, &settings.DeletionDate, &rawVisibility); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	visibility := make(map[domain.RecordType]bool)
	if len(rawVisibility) > 0 {
		if err := json.Unmarshal(rawVisibility, &visibility); err != nil {
			return nil, err
		}
	}
	settings.Visibility = visibility
	return &settings, nil
}

// SaveSettings upserts the document. Settings are only ever overwritten,
// never deleted.
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings domain.SharingSettings) error {
	visibility, err := json.Marshal(settings.Visibility)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO sharing_settings (owner_id, group_id, is_anonymous, display_name_override, deletion_date, visibility, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,NOW())
        ON CONFLICT (owner_id, group_id) DO UPDATE
        SET is_anonymous = EXCLUDED.is_anonymous,
            display_name_override = EXCLUDED.display_name_override,
            deletion_date = EXCLUDED.deletion_date,
            visibility = EXCLUDED.visibility,
            updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, stmt,
		settings.OwnerID,
		settings.GroupID,
		settings.IsAnonymous,
		settings.DisplayNameOverride,
		settings.DeletionDate,
		visibility,
	); err != nil {
		return unavailable(err)
	}
	return nil
}
