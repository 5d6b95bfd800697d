package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token verification outcomes. Every rejection of the auth gate is one of these
	ErrTokenMissing   = errors.New("token is missing")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenWrongType = errors.New("token has wrong type")

	ErrDiscoNotFound   = errors.New("disco not found")
	ErrNothingToUpdate = errors.New("nothing to update")

	ErrImageInvalid         = errors.New("image is invalid")
	ErrImageStorageDisabled = errors.New("image storage is not configured")
)

// IsTokenError reports whether err is one of the token verification failures
func IsTokenError(err error) bool {
	for _, target := range []error{ErrTokenMissing, ErrTokenMalformed, ErrTokenSignature, ErrTokenExpired, ErrTokenWrongType} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
