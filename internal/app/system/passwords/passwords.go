// internal/app/system/passwords/passwords.go

// Package passwords hashes and verifies account passwords with scrypt.
//
// Stored hashes have the form "<hex key>.<hex salt>".
package passwords

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLen = 16
	keyLen  = 64

	// scrypt cost parameters.
	costN = 16384
	costR = 8
	costP = 1
)

// ErrMalformed is returned by Verify when the stored hash cannot be parsed.
var ErrMalformed = errors.New("passwords: malformed hash")

// Hash derives a new salted hash for password.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("passwords: salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, costN, costR, costP, keyLen)
	if err != nil {
		return "", fmt.Errorf("passwords: derive: %w", err)
	}
	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// Verify reports whether password matches stored. The comparison runs in
// constant time.
func Verify(password, stored string) (bool, error) {
	keyHex, saltHex, ok := strings.Cut(stored, ".")
	if !ok {
		return false, ErrMalformed
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil || len(want) == 0 {
		return false, ErrMalformed
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false, ErrMalformed
	}
	got, err := scrypt.Key([]byte(password), salt, costN, costR, costP, len(want))
	if err != nil {
		return false, fmt.Errorf("passwords: derive: %w", err)
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// Random returns a hash of a random password, for accounts that sign in
// only through an external provider.
func Random() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("passwords: random: %w", err)
	}
	return Hash(hex.EncodeToString(buf))
}
