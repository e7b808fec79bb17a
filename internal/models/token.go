package models

import (
	"time"
)

// Token kinds encoded in the "type" claim
// A token decoded as one kind must never be accepted as the other
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by the auth service on login or registration
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Identity embedded in a valid access token
// Authorize returns it without a database round trip, so it may lag profile
// changes by at most the access token TTL
type Identity struct {
	UserID  int64
	Email   string
	IsAdmin bool
}
