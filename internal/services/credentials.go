package services

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword reports whether supplied matches storedHash. A malformed or
// empty hash is a mismatch, not an error.
func VerifyPassword(supplied, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(supplied)) == nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same work as a real comparison so an unknown
// email cannot be told apart from a wrong password by timing.
func burnPasswordCheck(supplied string) {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("notesaas-unknown-user"), bcrypt.DefaultCost)
		if err == nil {
			dummyHash = string(h)
		}
	})
	VerifyPassword(supplied, dummyHash)
}
