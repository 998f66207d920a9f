package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/domain"
	"github.com/aussiebroadwan/acrelay/pkg/cryptox"
)

const putResult = `
INSERT INTO results (token_hash, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (token_hash) DO UPDATE SET
    payload = excluded.payload,
    updated_at = excluded.updated_at
`

const getResult = `
SELECT payload, updated_at FROM results WHERE token_hash = ?
`

const deleteResult = `
DELETE FROM results WHERE token_hash = ?
`

const deleteExpiredResults = `
DELETE FROM results WHERE updated_at < ?
`

// resultsRepo keys rows by the token fingerprint so bearer tokens never land
// on disk.
type resultsRepo struct {
	db *sql.DB
}

func (r *resultsRepo) PutResult(ctx context.Context, res domain.Result) error {
	_, err := r.db.ExecContext(ctx, putResult,
		cryptox.FingerprintToken(res.Token),
		string(res.Payload),
		time.Now().UTC().UnixMilli(),
	)
	return err
}

func (r *resultsRepo) GetResult(ctx context.Context, token string) (domain.Result, error) {
	var (
		payload   string
		updatedAt int64
	)
	row := r.db.QueryRowContext(ctx, getResult, cryptox.FingerprintToken(token))
	if err := row.Scan(&payload, &updatedAt); err != nil {
		return domain.Result{}, mapNotFound(err)
	}

	return domain.Result{
		Token:     token,
		Payload:   []byte(payload),
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}, nil
}

func (r *resultsRepo) DeleteResult(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, deleteResult, cryptox.FingerprintToken(token))
	return err
}

func (r *resultsRepo) DeleteExpiredResults(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredResults, olderThan.UTC().UnixMilli())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
