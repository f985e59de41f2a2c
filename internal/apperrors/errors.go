package apperrors

import (
	"errors"
)

var (
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrAccountNotFound      = errors.New("account not found")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	ErrTokenInvalid        = errors.New("invalid or expired token")
	ErrTokenMissingAccount = errors.New("token missing account claim")
)
