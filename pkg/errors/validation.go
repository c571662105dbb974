package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// setNameRegex matches names usable as storage keys and file stems.
var setNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateSetName validates the name a DNA set is stored under.
// Names end up in file names, redis keys and mongo documents, so the
// rules are conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, not starting with punctuation
//   - No ".." sequences
func ValidateSetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "set name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "set name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "set name cannot contain \"..\"")
	}
	if !setNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid set name: %q", name)
	}
	return nil
}

// ValidatePath validates an input or output path taken from configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
