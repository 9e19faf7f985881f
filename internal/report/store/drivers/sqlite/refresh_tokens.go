package sqlite

import (
	"context"
	"time"

	"github.com/fieldops/salesreport/internal/report/domain"
	"github.com/fieldops/salesreport/pkg/idx"
)

type refreshTokensRepo struct {
	q dbtx
}

func (r *refreshTokensRepo) Create(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, fingerprint, expires_at, revoked)
		 VALUES (?, ?, ?, ?, ?)`,
		t.ID.String(), t.UserID, t.Fingerprint, t.ExpiresAt, t.Revoked)
	return err
}

func (r *refreshTokensRepo) GetByFingerprint(ctx context.Context, fp string) (domain.RefreshToken, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, fingerprint, expires_at, revoked, created_at
		 FROM refresh_tokens WHERE fingerprint = ?`, fp)

	var t domain.RefreshToken
	var id string
	err := row.Scan(&id, &t.UserID, &t.Fingerprint, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ID = idx.ID(id)
	return t, nil
}

func (r *refreshTokensRepo) Revoke(ctx context.Context, id idx.ID) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *refreshTokensRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ?`, userID)
	return err
}

func (r *refreshTokensRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
