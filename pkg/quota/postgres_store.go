package quota

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PostgresStore. *pgxpool.Pool, *pgx.Conn and
// pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	// $1 user, $2 key, $3 amount, $4 limit, $5 now, $6 reset_at for a new window.
	consumeSQL = `
INSERT INTO quota_usage AS q (user_id, quota_key, used, reset_at)
SELECT $1, $2, $3::bigint, $6::timestamptz
WHERE $4::bigint < 0 OR $3::bigint <= $4::bigint
ON CONFLICT (user_id, quota_key) DO UPDATE SET
    used     = CASE WHEN q.reset_at <= $5::timestamptz THEN EXCLUDED.used ELSE q.used + EXCLUDED.used END,
    reset_at = CASE WHEN q.reset_at <= $5::timestamptz THEN EXCLUDED.reset_at ELSE q.reset_at END
WHERE (CASE WHEN q.reset_at <= $5::timestamptz THEN 0 ELSE q.used END)
   <= (CASE WHEN $4::bigint < 0 THEN 9223372036854775807 ELSE $4::bigint END) - EXCLUDED.used
RETURNING used, reset_at`

	usageSQL = `
SELECT used, reset_at FROM quota_usage
WHERE user_id = $1 AND quota_key = $2 AND reset_at > $3`

	resetSQL = `
DELETE FROM quota_usage WHERE user_id = $1 AND quota_key = $2
RETURNING reset_at`

	resetUserSQL = `DELETE FROM quota_usage WHERE user_id = $1`
)

// PostgresStore implements Store on a Postgres table. Consume is a single
// upsert whose WHERE clause carries the limit check, so the row lock taken by
// ON CONFLICT serializes concurrent callers. The table is created by Migrations.
type PostgresStore struct {
	db  DBTX
	now func() time.Time
}

// NewPostgresStore wraps db.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// Usage returns the active counter.
func (ps *PostgresStore) Usage(ctx context.Context, userID, key string) (Usage, error) {
	var u Usage
	err := ps.db.QueryRow(ctx, usageSQL, userID, key, ps.now()).Scan(&u.Used, &u.ResetAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Usage{}, nil
	}
	if err != nil {
		return Usage{}, errors.Join(ErrStoreUnavailable, err)
	}
	return u, nil
}

// Consume performs the guarded upsert. No returned row means the limit check failed.
func (ps *PostgresStore) Consume(ctx context.Context, userID, key string, amount, limit int64, period time.Duration) (bool, Usage, error) {
	now := ps.now()

	var u Usage
	err := ps.db.QueryRow(ctx, consumeSQL, userID, key, amount, limit, now, now.Add(period)).Scan(&u.Used, &u.ResetAt)
	if errors.Is(err, pgx.ErrNoRows) {
		current, err := ps.Usage(ctx, userID, key)
		return false, current, err
	}
	if err != nil {
		return false, Usage{}, errors.Join(ErrStoreUnavailable, err)
	}
	return true, u, nil
}

// Reset deletes the counter and reports whether an active window existed.
func (ps *PostgresStore) Reset(ctx context.Context, userID, key string) (bool, error) {
	var resetAt time.Time
	err := ps.db.QueryRow(ctx, resetSQL, userID, key).Scan(&resetAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return resetAt.After(ps.now()), nil
}

// ResetUser deletes all counters of userID.
func (ps *PostgresStore) ResetUser(ctx context.Context, userID string) error {
	if _, err := ps.db.Exec(ctx, resetUserSQL, userID); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
