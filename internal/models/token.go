package models

import (
	"time"
)

// Refresh token row: at most one per account, replaced on every issue
type RefreshToken struct {
	ID        int64
	AccountID int64
	Token     string
	UpdatedAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager, AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
