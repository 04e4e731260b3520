package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentPath validates a document path before any filesystem access.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - No trailing path separator (the path must name a file)
//   - Maximum length of 4096 characters
func ValidateDocumentPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "document path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "document path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "document path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "document path must name a file: %q", path)
	}

	return nil
}

// ValidateSuffix validates a sibling-file suffix such as ".backup" or ".lock".
// It ensures the suffix cannot escape the target's directory.
func ValidateSuffix(suffix string) error {
	if suffix == "" {
		return New(ErrCodeInvalidInput, "suffix cannot be empty")
	}

	if strings.ContainsAny(suffix, "/\\\x00") {
		return New(ErrCodeInvalidInput, "suffix cannot contain path separators: %q", suffix)
	}

	if strings.Contains(suffix, "..") {
		return New(ErrCodeInvalidInput, "suffix cannot contain path traversal sequences: %q", suffix)
	}

	return nil
}

// ValidateFormat checks that format is one of the allowed values.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (allowed: %s)", format, strings.Join(allowed, ", "))
}
