package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ndodonov/accounts/internal/apperrors"
	"github.com/ndodonov/accounts/internal/models"
)

type AccountRepo struct {
	DB DBTX
}

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (email, username, password_hash)
VALUES ($1, $2, $3)
RETURNING id, created_at, email, username, password_hash, first_name, last_name, avatar
`

func (r *AccountRepo) CreateAccount(ctx context.Context, email string, username string, hashedPassword string) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, createAccount, email, username, hashedPassword)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, apperrors.ErrAccountAlreadyExists
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const getAccountByID = `-- name: GetAccountByID
SELECT id, created_at, email, username, password_hash, first_name, last_name, avatar
FROM accounts
WHERE id = $1
`

func (r *AccountRepo) GetAccountByID(ctx context.Context, id int64) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByID, id)
	return collectAccount(rows)
}

const getAccountByUsername = `-- name: GetAccountByUsername
SELECT id, created_at, email, username, password_hash, first_name, last_name, avatar
FROM accounts
WHERE username = $1
`

func (r *AccountRepo) GetAccountByUsername(ctx context.Context, username string) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByUsername, username)
	return collectAccount(rows)
}

const listAccounts = `-- name: ListAccounts
SELECT id, created_at, email, username, password_hash, first_name, last_name, avatar
FROM accounts
ORDER BY id
`

func (r *AccountRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, _ := r.DB.Query(ctx, listAccounts)
	accounts, err := pgx.CollectRows(rows, rowToAccount)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

const updateAccount = `-- name: UpdateAccount
UPDATE accounts
SET first_name = COALESCE($2, first_name),
    last_name  = COALESCE($3, last_name),
    avatar     = COALESCE($4, avatar)
WHERE id = $1
RETURNING id, created_at, email, username, password_hash, first_name, last_name, avatar
`

// Partial update: nil fields are sent as NULL and COALESCE keeps stored values
func (r *AccountRepo) UpdateAccount(ctx context.Context, id int64, update models.AccountUpdate) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, updateAccount, id, update.FirstName, update.LastName, update.Avatar)
	return collectAccount(rows)
}

const getAccountByRefreshToken = `-- name: GetAccountByRefreshToken
SELECT a.id, a.created_at, a.email, a.username, a.password_hash, a.first_name, a.last_name, a.avatar
FROM accounts a
JOIN refresh_tokens rt ON rt.account_id = a.id
WHERE rt.token = $1
`

func (r *AccountRepo) GetAccountByRefreshToken(ctx context.Context, token string) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, getAccountByRefreshToken, token)
	return collectAccount(rows)
}

func collectAccount(rows pgx.Rows) (models.Account, error) {
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.CreatedAt, &a.Email, &a.Username, &a.HashedPassword, &a.FirstName, &a.LastName, &a.Avatar)
	return a, err
}
