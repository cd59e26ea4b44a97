package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// Size fraction bounds accepted for a slot.
const (
	MinFraction = 0.1
	MaxFraction = 0.6
)

// MaxIdentifierLength bounds catalog identifiers. Real keys (ASIN, ISBN-13)
// are far shorter; the limit only keeps garbage out of URLs.
const MaxIdentifierLength = 64

// ValidateIdentifier validates a catalog product identifier before it is
// interpolated into a detail URL.
//
// The rules are conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - No path separators, query or fragment markers
//   - Maximum length of [MaxIdentifierLength] characters
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeInvalidIdentifier, "identifier cannot be empty")
	}

	if len(id) > MaxIdentifierLength {
		return New(ErrCodeInvalidIdentifier, "identifier too long (max %d characters)", MaxIdentifierLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidIdentifier, "identifier %q contains whitespace or control characters", id)
		}
	}

	if strings.ContainsAny(id, "/\\?#%") {
		return New(ErrCodeInvalidIdentifier, "identifier %q contains invalid characters", id)
	}

	return nil
}

// ValidateFraction checks that a slot size fraction lies in
// [MinFraction, MaxFraction]. Sums across slots are not checked.
func ValidateFraction(f float64) error {
	if f != f || f < MinFraction || f > MaxFraction {
		return New(ErrCodeInvalidFraction, "size fraction %.3f out of range [%.1f, %.1f]", f, MinFraction, MaxFraction)
	}
	return nil
}

// ValidatePath validates a file path within a repository for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateDetailURL validates a catalog detail URL template.
// It must use http(s) and contain exactly one %s verb for the identifier.
func ValidateDetailURL(tmpl string) error {
	if tmpl == "" {
		return New(ErrCodeConfiguration, "catalog detail URL cannot be empty")
	}

	if !strings.HasPrefix(tmpl, "http://") && !strings.HasPrefix(tmpl, "https://") {
		return New(ErrCodeConfiguration, "catalog detail URL must use http or https scheme")
	}

	if strings.Count(tmpl, "%s") != 1 {
		return New(ErrCodeConfiguration, "catalog detail URL must contain exactly one %%s placeholder: %q", tmpl)
	}

	return nil
}

// repoRefRegex matches GitHub "owner/name" references.
var repoRefRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?/[A-Za-z0-9._-]+$`)

// ValidateRepoRef validates an "owner/repo" reference used by the GitHub
// ledger backend. A missing reference is a configuration failure.
func ValidateRepoRef(ref string) error {
	if ref == "" {
		return New(ErrCodeConfiguration, "ledger repository reference is required (owner/repo)")
	}

	if !repoRefRegex.MatchString(ref) {
		return New(ErrCodeConfiguration, "invalid repository reference: %q (want owner/repo)", ref)
	}

	return nil
}
