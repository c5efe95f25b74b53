package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/healthshare/internal/domain"
)

// RecordRepository provides Postgres-backed persistence for health records.
type RecordRepository struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewRecordRepository constructs a RecordRepository.
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{
		pool:   pool,
		logger: log.New(log.Writer(), "[records] ", log.LstdFlags),
	}
}

// QueryRecords pages through one owner's records of one type, newest first.
// Rows carrying an unknown type name are skipped and counted rather than
// failing the page.
func (r *RecordRepository) QueryRecords(ctx context.Context, ownerID string, t domain.RecordType, rng *domain.TimeRange, cursor *domain.Cursor, limit int) ([]domain.HealthRecord, *domain.Cursor, error) {
	query := `SELECT record_id, owner_id, record_type, value, recorded_at
        FROM health_records WHERE owner_id=$1 AND record_type=$2`
	args := []interface{}{ownerID, string(t)}

	if rng != nil {
		query += ` AND recorded_at >= $3 AND recorded_at < $4`
		args = append(args, rng.Start, rng.End)
	}
	if cursor != nil {
		query += fmt.Sprintf(` AND (recorded_at, record_id) < ($%d, $%d)`, len(args)+1, len(args)+2)
		args = append(args, cursor.Timestamp, cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY recorded_at DESC, record_id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, unavailable(err)
	}
	defer rows.Close()

	results := make([]domain.HealthRecord, 0, limit)
	scanned := 0
	var lastScanned domain.Cursor
	for rows.Next() {
		scanned++
		var (
			rec     domain.HealthRecord
			rawType string
		)
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rawType, &rec.Value, &rec.Timestamp); err != nil {
			return nil, nil, err
		}
		lastScanned = domain.Cursor{Timestamp: rec.Timestamp, ID: rec.ID}
		recType, err := domain.ParseRecordType(rawType)
		if err != nil {
			recordMalformedRow()
			r.logger.Printf("skipping malformed record %s: %v", rec.ID, err)
			continue
		}
		rec.Type = recType
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	// The cursor tracks the last scanned row, not the last decodable one,
	// so a page tail of skipped rows cannot stall pagination.
	var next *domain.Cursor
	if scanned == limit {
		cursorCopy := lastScanned
		next = &cursorCopy
	}
	return results, next, nil
}

// WriteRecords persists a batch inside one transaction. Re-inserting an
// existing record id is a no-op: records are immutable once written.
func (r *RecordRepository) WriteRecords(ctx context.Context, ownerID string, records []domain.HealthRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return unavailable(err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO health_records (record_id, owner_id, record_type, value, recorded_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (record_id) DO NOTHING`

	for _, rec := range records {
		if _, err = tx.Exec(ctx, stmt, rec.ID, ownerID, string(rec.Type), rec.Value, rec.Timestamp); err != nil {
			return err
		}
	}

	err = tx.Commit(ctx)
	return err
}

// SweepExpired deletes up to batchSize records whose timestamps fall at or
// after the owner's deletion cutoff in every group the owner belongs to.
// The cutoff is the latest deletion date across the owner's settings, and
// an owner with any group lacking a deletion date is never swept: one
// group's early cutoff must not destroy data still shared elsewhere.
func (r *RecordRepository) SweepExpired(ctx context.Context, batchSize int) (int, error) {
	const selectQuery = `SELECT r.record_id
        FROM health_records r
        JOIN (
            SELECT s.owner_id, MAX(s.deletion_date) AS cutoff
            FROM sharing_settings s
            JOIN profiles p ON p.user_id = s.owner_id AND s.group_id = ANY(p.groups)
            GROUP BY s.owner_id, p.groups
            HAVING COUNT(*) FILTER (WHERE s.deletion_date IS NOT NULL) >= cardinality(p.groups)
        ) expiry ON expiry.owner_id = r.owner_id
        WHERE r.recorded_at >= expiry.cutoff
        ORDER BY r.recorded_at
        LIMIT $1`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, unavailable(err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, selectQuery, batchSize)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, batchSize)
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		err = tx.Commit(ctx)
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM health_records WHERE record_id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
