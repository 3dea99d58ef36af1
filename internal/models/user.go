package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the persisted account record. It is never written to the wire
// directly; see the dto package for client-facing shapes.
type User struct {
	ID               int64
	Username         string
	Email            string
	PasswordHash     string
	Budget           decimal.Decimal
	FullName         *string
	Village          *string
	PhoneNumber      *string
	ProfilePhotoPath *string
	CreatedAt        time.Time
}

// HasPhoto reports whether a profile photo path is recorded.
func (u User) HasPhoto() bool {
	return u.ProfilePhotoPath != nil && *u.ProfilePhotoPath != ""
}
