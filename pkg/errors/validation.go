package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ebdCodeRegex matches decision tree identifiers such as E_0003.
var ebdCodeRegex = regexp.MustCompile(`^E_\d+$`)

// ValidateEBDCode validates a decision tree identifier.
func ValidateEBDCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidInput, "ebd code cannot be empty")
	}
	if !ebdCodeRegex.MatchString(code) {
		return New(ErrCodeInvalidInput, "invalid ebd code: %q (expected E_<digits>)", code)
	}
	return nil
}

// ValidateFilename validates a filename derived from user input for safety.
// It ensures the filename is a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	if len(filename) > 256 {
		return New(ErrCodeInvalidPath, "filename too long (max 256 characters)")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid control characters")
		}
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if filename == "." || filename == ".." || strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPath, "filename cannot be a hidden file")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// LinkPlaceholder is substituted with the referenced ebd code in link templates.
const LinkPlaceholder = "{ebd_code}"

// ValidateLinkTemplate validates a cross-reference link template.
// An empty template is valid and disables linking.
func ValidateLinkTemplate(tmpl string) error {
	if tmpl == "" {
		return nil
	}
	if !strings.Contains(tmpl, LinkPlaceholder) {
		return New(ErrCodeInvalidInput, "link template must contain %s", LinkPlaceholder)
	}
	if strings.ContainsAny(tmpl, "\"<>\n") {
		return New(ErrCodeInvalidInput, "link template contains characters not allowed in an attribute")
	}
	return nil
}
