package account

import (
	"context"
	"fmt"
	"io"

	"github.com/ndodonov/accounts/internal/models"
	"github.com/ndodonov/accounts/internal/repository"
	"github.com/ndodonov/accounts/internal/service/auth"
	"github.com/ndodonov/accounts/internal/staticfiles"
)

// Account service: registration, retrieval and profile updates
type AccountService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
	files   staticfiles.FileStore
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage, files staticfiles.FileStore) *AccountService {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}

	return &AccountService{
		hasher:  hasher,
		storage: storage,
		files:   files,
	}
}

// Create account with hashed password
// Returns apperrors.ErrAccountAlreadyExists if the username is taken
func (s *AccountService) Create(ctx context.Context, email string, username string, password string) (models.Account, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.Account{}, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	account, err := s.storage.Account().CreateAccount(ctx, email, username, hash)
	if err != nil {
		return models.Account{}, err
	}

	return account, nil
}

func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	return s.storage.Account().ListAccounts(ctx)
}

func (s *AccountService) Get(ctx context.Context, id int64) (models.Account, error) {
	return s.storage.Account().GetAccountByID(ctx, id)
}

// Apply a partial profile update, nil fields stay untouched
func (s *AccountService) Update(ctx context.Context, id int64, update models.AccountUpdate) (models.Account, error) {
	if update.IsEmpty() {
		// Nothing to write, still report missing ids
		return s.storage.Account().GetAccountByID(ctx, id)
	}

	return s.storage.Account().UpdateAccount(ctx, id, update)
}

// Store the uploaded avatar and point the account at its public URL
func (s *AccountService) UpdateAvatar(ctx context.Context, id int64, filename string, file io.Reader) (models.Account, error) {
	// Check the account first so a missing id doesn't leave an orphan file
	if _, err := s.storage.Account().GetAccountByID(ctx, id); err != nil {
		return models.Account{}, err
	}

	url, err := s.files.Save(filename, file)
	if err != nil {
		return models.Account{}, fmt.Errorf("error while saving avatar. Err: %w", err)
	}

	return s.storage.Account().UpdateAccount(ctx, id, models.AccountUpdate{Avatar: &url})
}
