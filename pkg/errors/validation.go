package errors

import (
	"strings"
	"unicode"
)

// maxTitleLength bounds diagram titles. The title doubles as the output file
// name, and most filesystems cap a path component at 255 bytes.
const maxTitleLength = 200

// ValidateTitle validates a diagram title before it is used as a caption and
// as the basis of the output file name.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only titles
//   - No control characters (newlines, tabs, null bytes)
//   - Maximum length of 200 characters
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidInput, "title cannot be empty")
	}

	if len(title) > maxTitleLength {
		return New(ErrCodeInvalidInput, "title too long (max %d characters)", maxTitleLength)
	}

	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputPath validates an explicit output path.
// An empty path is valid and means "derive from the title".
func ValidateOutputPath(path string) error {
	if path == "" {
		return nil
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	return nil
}
