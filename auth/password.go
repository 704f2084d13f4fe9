package auth

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var (
	ErrPasswordTooShort   = errors.New("this password is too short, it must contain at least 8 characters")
	ErrPasswordNumeric    = errors.New("this password is entirely numeric")
	ErrPasswordMismatch   = errors.New("the two password fields didn't match")
	ErrPasswordIncorrect  = errors.New("your old password was entered incorrectly")
	ErrPasswordNotHashed  = errors.New("account has no usable password")
	ErrPasswordIsTooLarge = errors.New("password is longer than 72 bytes")
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordIsTooLarge
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password with a stored hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword applies the minimal strength rules for new passwords.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return ErrPasswordNumeric
	}
	return nil
}
