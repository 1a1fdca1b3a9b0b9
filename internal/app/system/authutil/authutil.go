// internal/app/system/authutil/authutil.go

// Package authutil wraps password hashing. Member passwords are stored as
// bcrypt hashes; the legacy plaintext field on old member documents is only
// read during migration at login.
package authutil

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen matches the minimum the original signup form enforced.
const MinPasswordLen = 6

var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

// HashPassword returns the bcrypt hash of a password after length
// validation.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
