package i

import (
	"time"
)

// Tokenizer signs and verifies tokens carrying a payload of type T.
type Tokenizer[T any] interface {
	// Generate creates a token carrying data that expires after expTime.
	Generate(data T, expTime time.Duration) (string, error)

	// Payload validates token and returns the data it carries.
	Payload(token string) (T, error)

	// Valid reports whether token verifies and has not expired.
	Valid(token string) bool
}
