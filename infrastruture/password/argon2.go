// Package password hashes and verifies user passwords.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beka-birhanu/quill-api/service/i"
	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

var errInvalidDigest = errors.New("invalid argon2id digest")

// Argon2Config holds the argon2id cost parameters.
type Argon2Config struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Config returns the OWASP minimum argon2id parameters.
func DefaultArgon2Config() Argon2Config {
	return Argon2Config{
		Memory:      19 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 hashes passwords with argon2id into PHC strings.
type Argon2 struct {
	config Argon2Config
}

var _ i.PasswordHasher = &Argon2{}

// NewArgon2 validates cfg and returns a hasher using it.
func NewArgon2(cfg Argon2Config) (*Argon2, error) {
	switch {
	case cfg.Memory < minMemoryKB:
		return nil, fmt.Errorf("argon2 memory must be >= %d KiB", minMemoryKB)
	case cfg.Time < minTimeCost:
		return nil, fmt.Errorf("argon2 time must be >= %d", minTimeCost)
	case cfg.Parallelism < minParallelism:
		return nil, fmt.Errorf("argon2 parallelism must be >= %d", minParallelism)
	case cfg.SaltLength < minSaltLength:
		return nil, fmt.Errorf("argon2 salt length must be >= %d", minSaltLength)
	case cfg.KeyLength < minKeyLength:
		return nil, fmt.Errorf("argon2 key length must be >= %d", minKeyLength)
	}
	return &Argon2{config: cfg}, nil
}

// Hash returns $argon2id$v=19$m=...,t=...,p=...$salt$hash with unpadded base64.
func (a *Argon2) Hash(password []byte) (string, error) {
	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("reading salt: %w", err)
	}

	key := argon2.IDKey(password, salt, a.config.Time, a.config.Memory, a.config.Parallelism, a.config.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.config.Memory,
		a.config.Time,
		a.config.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key with the parameters stored in digest.
func (a *Argon2) Verify(password []byte, digest string) bool {
	p, err := parsePHC(digest)
	if err != nil {
		return false
	}

	key := argon2.IDKey(password, p.salt, p.time, p.memory, p.parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(key, p.key) == 1
}

type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parsePHC(digest string) (*phc, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return nil, errInvalidDigest
	}

	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("%w: unsupported version %q", errInvalidDigest, parts[2])
	}

	p := &phc{}
	seen := 0
	for _, pair := range strings.Split(parts[3], ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errInvalidDigest
		}
		switch name {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minMemoryKB) {
				return nil, fmt.Errorf("%w: memory", errInvalidDigest)
			}
			p.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minTimeCost) {
				return nil, fmt.Errorf("%w: time", errInvalidDigest)
			}
			p.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v < uint64(minParallelism) {
				return nil, fmt.Errorf("%w: parallelism", errInvalidDigest)
			}
			p.parallelism = uint8(v)
		default:
			return nil, fmt.Errorf("%w: unknown parameter %q", errInvalidDigest, name)
		}
		seen++
	}
	if seen != 3 {
		return nil, fmt.Errorf("%w: missing parameters", errInvalidDigest)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) < int(minSaltLength) {
		return nil, fmt.Errorf("%w: salt", errInvalidDigest)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) < int(minKeyLength) {
		return nil, fmt.Errorf("%w: key", errInvalidDigest)
	}
	return p, nil
}
