package validation

import (
	"fmt"
	"strings"
)

const (
	MaxUsernameLength = 128
	MinEventBuffer    = 1
	MaxEventBuffer    = 1024
)

func ValidateNonEmptyString(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters, got %d", MaxUsernameLength, len(username))
	}
	if strings.TrimSpace(username) != username {
		return fmt.Errorf("username cannot have leading or trailing whitespace")
	}
	return nil
}

// ValidateJWTShape checks that a string looks like a compact JWT
// (three dot-separated segments). It does not verify the signature.
func ValidateJWTShape(fieldName, token string) error {
	if token == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if strings.Count(token, ".") != 2 {
		return fmt.Errorf("%s is not a compact JWT", fieldName)
	}
	return nil
}

func ValidateEventBuffer(size int) error {
	if size < MinEventBuffer || size > MaxEventBuffer {
		return fmt.Errorf("event buffer size must be between %d and %d, got %d", MinEventBuffer, MaxEventBuffer, size)
	}
	return nil
}
