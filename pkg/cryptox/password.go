// Package cryptox wraps the password hashing, password policy and random
// token primitives the service depends on.
package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor. 12 keeps a verify around tens of
// milliseconds on current hardware; tune down for constrained environments.
const HashCost = 12

// ErrMismatch reports that a password does not match its stored hash.
var ErrMismatch = errors.New("cryptox: password does not match")

// dummyHash is a valid bcrypt hash of an unguessable throwaway value. Verify
// runs against it when no real hash exists so the "unknown user" and "wrong
// password" paths cost the same.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// HashPassword produces a salted bcrypt hash. Each call salts freshly, so
// the same input never hashes to the same output twice.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// An empty encodedHash still burns a full bcrypt comparison against a dummy
// hash before failing, keeping timing parity with a real mismatch.
func VerifyPassword(password, encodedHash string) error {
	if encodedHash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}
