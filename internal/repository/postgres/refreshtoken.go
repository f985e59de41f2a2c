package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ndodonov/accounts/internal/apperrors"
	"github.com/ndodonov/accounts/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const upsertToken = `-- name: Upsert refresh token
INSERT INTO refresh_tokens (account_id, token)
VALUES ($1, $2)
ON CONFLICT (account_id) DO UPDATE
SET token = EXCLUDED.token, updated_at = now()
RETURNING id, account_id, token, updated_at
`

// Save the token for the account, replacing the previous one if any.
// Single statement, so concurrent logins for the same account can't race the
// unique constraint on account_id.
func (r *RefreshTokenRepo) Upsert(ctx context.Context, accountID int64, token string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, upsertToken, accountID, token)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

const getToken = `-- name: GetToken by string itself
SELECT id, account_id, token, updated_at
FROM refresh_tokens
WHERE token = $1
`

func (r *RefreshTokenRepo) GetToken(ctx context.Context, token string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, token)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return saved, nil
	case errors.Is(err, pgx.ErrNoRows):
		return saved, apperrors.ErrRefreshTokenNotFound
	default:
		return saved, fmt.Errorf("db error: %w", err)
	}
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.AccountID, &t.Token, &t.UpdatedAt)
	return t, err
}
