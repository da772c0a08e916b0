// Package domain holds the entities of the blogging service and their rules.
package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/nbutton23/zxcvbn-go"
)

const (
	minPasswordStrengthScore = 3

	usernamePattern   = `^[a-zA-Z0-9_]+$` // Alphanumeric with underscores
	minUsernameLength = 3
	maxUsernameLength = 20
)

var (
	usernameRegex = regexp.MustCompile(usernamePattern)
)

// User represents the BSON version of the User for database storage.
type User struct {
	ID           uuid.UUID `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"passwordHash"`
	IsAdmin      bool      `bson:"isAdmin"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// UserConfig holds parameters for creating a User with an existing password hash.
type UserConfig struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	IsAdmin      bool
	Now          time.Time
}

// NewUser creates a new User with the provided configuration.
func NewUser(config UserConfig) (*User, error) {
	if err := ValidateUsername(config.Username); err != nil {
		return nil, err
	}
	if config.PasswordHash == "" {
		return nil, fmt.Errorf("user %s: empty password hash", config.Username)
	}

	now := config.Now.UTC().Truncate(time.Millisecond)
	return &User{
		ID:           config.ID,
		Username:     config.Username,
		PasswordHash: config.PasswordHash,
		IsAdmin:      config.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// SetPasswordHash replaces the stored hash.
func (u *User) SetPasswordHash(hash string, now time.Time) {
	u.PasswordHash = hash
	u.UpdatedAt = now.UTC().Truncate(time.Millisecond)
}

// ValidateUsername checks length and allowed characters.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLength {
		return fmt.Errorf("%w: too short, minimum %d characters", ErrInvalidUsername, minUsernameLength)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("%w: too long, maximum %d characters", ErrInvalidUsername, maxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("%w: only letters, digits and underscores are allowed", ErrInvalidUsername)
	}
	return nil
}

// ValidatePassword checks the strength of the password.
func ValidatePassword(password string) error {
	result := zxcvbn.PasswordStrength(password, nil)
	if result.Score < minPasswordStrengthScore {
		return ErrWeakPassword
	}
	return nil
}
