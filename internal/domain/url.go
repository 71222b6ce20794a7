package domain

import (
	"net/url"
	"strings"
)

// ValidateURL rejects anything that is not an absolute http(s) URL with a
// host. It runs before any network activity.
func ValidateURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, ErrInvalidURL
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Hostname() == "" {
		return nil, ErrInvalidURL
	}
	return parsed, nil
}
