package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager, AuthService
// Refresh may be empty when only the access token was reissued
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
