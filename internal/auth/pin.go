package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPin is returned for PINs that are not 4 to 6 digits.
var ErrInvalidPin = errors.New("pin must be 4 to 6 digits")

// HashPin validates and bcrypt-hashes a staff PIN.
func HashPin(pin string) (string, error) {
	if !validPin(pin) {
		return "", ErrInvalidPin
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPin reports whether pin matches a hash produced by HashPin.
func CheckPin(hash, pin string) bool {
	if hash == "" || pin == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

func validPin(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
