package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"golang.org/x/net/idna"
)

// Size limits (in bytes)
const (
	MaxMessageSize = 64 * 1024 // single bridge or HTTP message
	MaxURLLength   = 8 * 1024
	MaxReasonSize  = 4 * 1024
)

// ErrInvalidURL is returned for URLs the agent refuses to analyze.
var ErrInvalidURL = errors.New("invalid url")

// hostProfile maps hosts for comparison only. Browsers load hosts that
// strict IDNA rejects (underscores, leading hyphens), so it never validates.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.CheckHyphens(false),
)

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a new validator with the specified max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// DefaultJSONValidator returns a validator with the message size limit
func DefaultJSONValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxMessageSize)
}

// MaxSize returns the configured limit.
func (v *JSONSizeValidator) MaxSize() int {
	return v.maxSize
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	if len(data) > v.maxSize {
		return fmt.Errorf("JSON size %d bytes exceeds maximum %d bytes", len(data), v.maxSize)
	}
	return nil
}

// ValidateJSON validates both size and JSON structure
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	// Check size first (faster than parsing)
	if err := v.ValidateSize(data); err != nil {
		return err
	}
	if !sonic.Valid(data) {
		return fmt.Errorf("invalid JSON")
	}
	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}
	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateHTTPURL parses raw and accepts any absolute http(s) URL with a
// host. Host syntax is not judged: anything a browser can navigate to must
// reach the analysis service.
func ValidateHTTPURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if err := ValidateString(raw, "url", MaxURLLength, true); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: no host", ErrInvalidURL)
	}
	return u, nil
}

// CanonicalHost returns the lower-case ASCII form of the URL's host.
func CanonicalHost(u *url.URL) string {
	host := u.Hostname()
	if ascii, err := hostProfile.ToASCII(host); err == nil {
		host = ascii
	}
	return strings.ToLower(host)
}

// SameDocument reports whether u points at the same scheme, host and path as
// base, ignoring query and fragment.
func SameDocument(u, base *url.URL) bool {
	if base == nil || u == nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) &&
		CanonicalHost(u) == CanonicalHost(base) &&
		u.Port() == base.Port() &&
		strings.TrimRight(u.Path, "/") == strings.TrimRight(base.Path, "/")
}

var extensionSchemes = []string{"chrome-extension://", "moz-extension://", "safari-web-extension://"}

// IsExtensionOrigin reports whether origin belongs to a browser extension.
func IsExtensionOrigin(origin string) bool {
	lower := strings.ToLower(origin)
	for _, scheme := range extensionSchemes {
		if strings.HasPrefix(lower, scheme) && len(lower) > len(scheme) {
			return true
		}
	}
	return false
}
