package vetting

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeDomain ensures domain is in correct format
func NormalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.ToLower(domain)

	// Remove protocol if present
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "https://")

	// Drop any path, query or port
	if i := strings.IndexAny(domain, "/?#"); i >= 0 {
		domain = domain[:i]
	}
	switch {
	case strings.HasPrefix(domain, "["):
		// Bracketed IPv6 literal, optionally followed by a port.
		if end := strings.Index(domain, "]"); end > 0 {
			domain = domain[1:end]
		}
	case strings.Count(domain, ":") == 1:
		domain, _, _ = strings.Cut(domain, ":")
	}

	return strings.TrimSuffix(domain, ".")
}

// ParseURL parses a page URL and checks that it carries a host.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %v", ErrInvalidInput, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: url %q has no host", ErrInvalidInput, raw)
	}
	return u, nil
}

// HostFromURL returns the lowercased hostname of a page URL.
func HostFromURL(raw string) (string, error) {
	u, err := ParseURL(raw)
	if err != nil {
		return "", err
	}
	return canonicalHost(u.Hostname()), nil
}
