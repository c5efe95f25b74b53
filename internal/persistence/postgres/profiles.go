package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/healthshare/internal/domain"
)

// ProfileRepository provides Postgres-backed persistence for user profiles.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// ProfilesByGroupAndRole returns every profile tagged with the group and
// role. Order follows creation time; callers needing a different order sort
// explicitly.
func (r *ProfileRepository) ProfilesByGroupAndRole(ctx context.Context, groupID string, role domain.Role) ([]domain.UserProfile, error) {
	const query = `SELECT user_id, display_name, role, groups
        FROM profiles
        WHERE role = $1 AND $2 = ANY(groups)
        ORDER BY created_at, user_id`

	rows, err := r.pool.Query(ctx, query, string(role), groupID)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	profiles := make([]domain.UserProfile, 0)
	for rows.Next() {
		var (
			profile domain.UserProfile
			rawRole string
		)
		if err := rows.Scan(&profile.ID, &profile.DisplayName, &rawRole, &profile.Groups); err != nil {
			return nil, err
		}
		profile.Role = domain.Role(rawRole)
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Profile returns nil when no profile exists for the id.
func (r *ProfileRepository) Profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	const query = `SELECT user_id, display_name, role, groups FROM profiles WHERE user_id = $1`

	row := r.pool.QueryRow(ctx, query, userID)
	var (
		profile domain.UserProfile
		rawRole string
	)
	if err := row.Scan(&profile.ID, &profile.DisplayName, &rawRole, &profile.Groups); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	profile.Role = domain.Role(rawRole)
	return &profile, nil
}

// UpdateProfile overwrites the admin-editable fields. Updating an unknown
// profile is a no-op.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	const stmt = `UPDATE profiles
        SET role = $2, groups = $3, updated_at = NOW()
        WHERE user_id = $1`

	if _, err := r.pool.Exec(ctx, stmt, userID, string(update.Role), update.Groups); err != nil {
		return unavailable(err)
	}
	return nil
}

// CreateProfile registers a profile at account registration time.
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile domain.UserProfile) error {
	const stmt = `INSERT INTO profiles (user_id, display_name, role, groups)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, stmt, profile.ID, profile.DisplayName, string(profile.Role), profile.Groups); err != nil {
		return unavailable(err)
	}
	return nil
}
