package password

import (
	"fmt"

	"github.com/beka-birhanu/quill-api/service/i"
)

// Hasher names accepted by New.
const (
	NameArgon2 = "argon2"
	NameBcrypt = "bcrypt"
)

// New returns the hasher called name. bcryptCost is used only for bcrypt.
func New(name string, bcryptCost int) (i.PasswordHasher, error) {
	switch name {
	case NameArgon2:
		h, err := NewArgon2(DefaultArgon2Config())
		if err != nil {
			return nil, err
		}
		return h, nil
	case NameBcrypt:
		h, err := NewBcrypt(bcryptCost)
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
