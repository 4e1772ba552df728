package service

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Names of the credential verifiers accepted by NewVerifier.
const (
	VerifierPlain  = "plain"
	VerifierBcrypt = "bcrypt"
)

// CredentialVerifier decides how a password is written into a credential record
// and how a login attempt is checked against it.
type CredentialVerifier interface {
	// Seal returns the value stored in the credential's password field.
	Seal(password string) (string, error)
	// Verify reports whether supplied matches the stored value.
	Verify(stored, supplied string) bool
}

// PlainVerifier stores passwords as-is and requires an exact match.
type PlainVerifier struct{}

// Seal implements CredentialVerifier.
func (PlainVerifier) Seal(password string) (string, error) { return password, nil }

// Verify implements CredentialVerifier.
func (PlainVerifier) Verify(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	// Cost is the bcrypt work factor; zero means bcrypt.DefaultCost.
	Cost int
}

// Seal implements CredentialVerifier.
func (v BcryptVerifier) Seal(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify implements CredentialVerifier.
func (BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// NewVerifier returns the verifier registered under name. An empty name selects plain.
func NewVerifier(name string) (CredentialVerifier, error) {
	switch name {
	case VerifierPlain, "":
		return PlainVerifier{}, nil
	case VerifierBcrypt:
		return BcryptVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing %q", name)
	}
}
