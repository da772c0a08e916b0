package password

import (
	"fmt"

	"github.com/beka-birhanu/quill-api/service/i"
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes passwords with bcrypt at a fixed cost.
type Bcrypt struct {
	cost int
}

var _ i.PasswordHasher = &Bcrypt{}

// NewBcrypt returns a bcrypt hasher. Cost must be within bcrypt's bounds.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash generates a bcrypt hash for the given password.
func (b *Bcrypt) Hash(password []byte) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(password, b.cost)
	return string(bytes), err
}

// Verify verifies if the given password matches the stored hash.
func (b *Bcrypt) Verify(password []byte, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), password)
	return err == nil
}
