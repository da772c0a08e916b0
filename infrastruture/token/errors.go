package token

import (
	"errors"
	"fmt"
)

// ErrTokenInvalid is the coarse verification failure. Every decode error wraps it,
// so callers that do not care about the cause can match on it alone.
var ErrTokenInvalid = errors.New("token invalid")

// Decode failure causes.
var (
	ErrTokenMalformed        = fmt.Errorf("%w: malformed", ErrTokenInvalid)
	ErrTokenSignatureInvalid = fmt.Errorf("%w: signature mismatch", ErrTokenInvalid)
	ErrTokenExpired          = fmt.Errorf("%w: expired", ErrTokenInvalid)
)

// ErrSigningConfiguration reports a secret or algorithm that cannot sign tokens.
// It is a startup error and never a per-request condition.
var ErrSigningConfiguration = errors.New("token signing configuration invalid")
