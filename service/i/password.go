package i

// PasswordHasher turns passwords into storable digests and checks them.
type PasswordHasher interface {
	// Hash returns a self-describing digest of password.
	Hash(password []byte) (string, error)

	// Verify reports whether password matches digest. A malformed digest
	// never matches.
	Verify(password []byte, digest string) bool
}
