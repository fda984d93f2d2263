package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used by NewPasswordHasher
const DefaultBcryptCost = 12

// PasswordHasher hashes and verifies account passwords
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: DefaultBcryptCost}
}

// NewPasswordHasherWithCost is meant for tests where bcrypt.MinCost keeps hashing fast
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash generates a bcrypt hash of the given password
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hash
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
