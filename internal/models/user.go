package models

import (
	"time"
)

const RoleDefault = 0

type User struct {
	ID           int64
	CreatedAt    time.Time
	Name         string
	Email        string
	PasswordHash string
	Role         int
}

// Principal is the identity attached to a request after its access token was verified
type Principal struct {
	ID   int64
	Role int
	Name string
}
