package validation

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid input")

// UsernamePattern определяет допустимый формат username
// Только латинские буквы, цифры, нижнее подчеркивание и точка
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 30
)

// ValidateUsername checks the public handle of a profile.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username cannot be empty", ErrInvalid)
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("%w: username must be at least %d characters long", ErrInvalid, MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("%w: username must not exceed %d characters", ErrInvalid, MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username can only contain letters, numbers, dots and underscores", ErrInvalid)
	}

	return nil
}
