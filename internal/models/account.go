package models

import (
	"time"
)

type Account struct {
	ID             int64
	CreatedAt      time.Time
	Email          string
	Username       string
	HashedPassword string
	FirstName      string
	LastName       string
	Avatar         string
}

// Partial account update: nil fields are left untouched
type AccountUpdate struct {
	FirstName *string
	LastName  *string
	Avatar    *string
}

func (u AccountUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Avatar == nil
}
