package errors

import (
	"net/url"
	"path"
	"strings"
	"unicode"
)

// ValidatePackageFile validates a package archive file name before it is
// joined onto a mirror URL and written to the target directory.
//
// Names come from the metadata document, so they are held to the shape of a
// single file: at most 256 bytes, no control characters, no separators and
// no "..".
func ValidatePackageFile(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "package file name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "package file name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "package file name contains invalid control characters")
		}
	}

	if i := strings.IndexAny(name, `/\`); i >= 0 {
		return New(ErrCodeInvalidName, "package file name contains a path separator: %q", name[i])
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "package file name contains %q", "..")
	}

	return nil
}

// ValidatePath validates an archive entry path before extraction.
// It prevents entries from escaping the extraction directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal outside the root
//   - No backslashes (Windows-style paths)
func ValidatePath(p string) error {
	if p == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(p) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range p {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	if strings.HasPrefix(p, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(p, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	// Archives may legitimately contain names like "a..b"; only reject
	// entries that climb out of the root once cleaned.
	if cleaned := path.Clean(p); cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL checks that rawURL is an absolute http or https URL with a
// host. It is applied to the configured metadata URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}
	return nil
}
