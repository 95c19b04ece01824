package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	sessionIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	sessionIDLength   = 32
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString returns a cryptographically secure, unbiased string of the requested length.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}

	return string(value), nil
}

// NewSessionID returns an opaque identifier for an in-memory session.
func NewSessionID() (string, error) {
	return RandomString(sessionIDLength, sessionIDAlphabet)
}

// ValidSessionID reports whether raw has the shape NewSessionID produces.
func ValidSessionID(raw string) bool {
	if len(raw) != sessionIDLength {
		return false
	}
	for _, char := range raw {
		if !strings.ContainsRune(sessionIDAlphabet, char) {
			return false
		}
	}
	return true
}
