package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare user provided password with known hashedPassword
	// Must be protected against timing attacks
	Verify(password string, hashedPassword string) bool
}

// Cost used for every stored password hash
const BcryptCost = 12

// Bcrypt password hasher
// Will be used as default one if user not provide it's own
type BcryptHasher struct {
	Cost int
}

var DefaultHasher = BcryptHasher{Cost: BcryptCost}

// bcrypt reads at most 72 bytes of password, longer ones are cut to that
const bcryptMaxPasswordBytes = 72

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxPasswordBytes {
		b = b[:bcryptMaxPasswordBytes]
	}
	return b
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = BcryptCost
	}

	hash, err := bcrypt.GenerateFromPassword(truncate(password), cost)
	return string(hash), err
}

// Verify reports whether password matches hashed one
// Malformed hash is just a mismatch
func (h BcryptHasher) Verify(password string, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), truncate(password)) == nil
}
