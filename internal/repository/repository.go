package repository

import (
	"context"

	"github.com/ndodonov/accounts/internal/models"
)

// Account repository interface
type AccountRepo interface {
	// Create account
	// If account with username exists already has to return apperrors.ErrAccountAlreadyExists
	CreateAccount(ctx context.Context, email string, username string, hashedPassword string) (models.Account, error)

	// Get account by its id or username
	// If account not found must return apperrors.ErrAccountNotFound
	GetAccountByID(ctx context.Context, id int64) (models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (models.Account, error)

	// List all accounts ordered by id
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// Apply partial update: nil fields keep their stored values
	// If account not found must return apperrors.ErrAccountNotFound
	UpdateAccount(ctx context.Context, id int64, update models.AccountUpdate) (models.Account, error)

	// Resolve the account that owns the given refresh token string
	// Must return apperrors.ErrAccountNotFound if no row matches
	// (covers both "never issued" and "superseded by rotation")
	GetAccountByRefreshToken(ctx context.Context, token string) (models.Account, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save the token for the account
	// Has to be an atomic upsert: the account keeps exactly zero or one row,
	// and a concurrent save must not raise a uniqueness violation
	Upsert(ctx context.Context, accountID int64, token string) (models.RefreshToken, error)

	// Return the token row by the token string itself
	// If not found must return apperrors.ErrRefreshTokenNotFound
	GetToken(ctx context.Context, token string) (models.RefreshToken, error)
}

// Storage combines entity repositories over a single db handle
type Storage interface {
	Account() AccountRepo
	Refresh() RefreshTokenRepo

	// Run fn within a db transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
