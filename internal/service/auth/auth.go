package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ndodonov/accounts/internal/apperrors"
	"github.com/ndodonov/accounts/internal/models"
	"github.com/ndodonov/accounts/internal/repository"
	"github.com/ndodonov/accounts/internal/service/auth/tokenmanager"
)

const authScheme = "Bearer"

type Config struct {
	// Hasher to use during login, BcryptHasher if not set
	Hasher PasswordHasher
}

// Auth service: login, token refresh and the request auth guard
type AuthService struct {
	token   *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(cfg Config, token *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if token == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	return &AuthService{
		token:   token,
		hasher:  hasher,
		storage: storage,
	}, nil
}

// Check account credentials
// Unknown username and wrong password fail with the same error, so a caller
// can't probe which usernames exist
func (s *AuthService) Authenticate(ctx context.Context, username string, password string) (models.Account, error) {
	account, err := s.storage.Account().GetAccountByUsername(ctx, username)
	if err != nil {
		return models.Account{}, apperrors.ErrAccountNotFound
	}

	if err := s.hasher.Compare(account.HashedPassword, password); err != nil {
		return models.Account{}, apperrors.ErrAccountNotFound
	}

	return account, nil
}

// Issue a token pair and persist the refresh token, replacing the previous
// one so the account keeps exactly one server-side refresh token
func (s *AuthService) CreateTokens(ctx context.Context, account models.Account) (models.TokenPair, error) {
	pair, err := s.token.GeneratePair(account)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	_, err = s.storage.Refresh().Upsert(ctx, account.ID, pair.Refresh.Value)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return models.TokenPair{}, err
	}

	return s.CreateTokens(ctx, account)
}

// Exchange a refresh token for a fresh pair
// The old token dies here: issuing the new pair overwrites the stored row,
// so a second exchange with the same string fails
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	if _, err := s.token.Parse(refresh); err != nil {
		return models.TokenPair{}, err
	}

	account, err := s.storage.Account().GetAccountByRefreshToken(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", apperrors.ErrRefreshTokenNotFound, err)
	}

	return s.CreateTokens(ctx, account)
}

// Auth guard: verify the bearer token on the request and return the identity
// embedded in it. No store access, the signature is trusted as is.
func (s *AuthService) AccountFromRequest(ctx context.Context, r *http.Request) (models.Account, error) {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, authScheme) {
		return models.Account{}, apperrors.ErrTokenInvalid
	}

	claim, err := s.token.Parse(strings.TrimSpace(token))
	if err != nil {
		return models.Account{}, err
	}

	return models.Account{
		ID:       claim.ID,
		Email:    claim.Email,
		Username: claim.Username,
	}, nil
}
