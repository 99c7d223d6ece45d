package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is deliberately high; logins are rare and hashes leak forever.
const BcryptCost = 14

// PinLength is the length of generated captain PINs.
const PinLength = 6

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	pinRegex   = regexp.MustCompile(`^[0-9]{4,8}$`)
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPin hashes a numeric PIN with the same cost as passwords.
func HashPin(pin string) (string, error) {
	if !IsValidPin(pin) {
		return "", fmt.Errorf("pin must be 4 to 8 digits")
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), BcryptCost)
	return string(bytes), err
}

func CheckPin(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// IsValidPin accepts 4 to 8 digit numeric PINs.
func IsValidPin(pin string) bool { return pinRegex.MatchString(pin) }

func IsValidEmail(email string) bool { return emailRegex.MatchString(email) }

// GeneratePin returns a random numeric PIN of PinLength digits.
func GeneratePin() (string, error) {
	pin := ""
	for i := 0; i < PinLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate pin: %w", err)
		}
		pin += n.String()
	}
	return pin, nil
}
