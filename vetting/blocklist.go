package vetting

import (
	"fmt"
	"strings"
)

// DefaultMaliciousDomains is the built-in seed for the blocklist. Feeds and
// local lists configured at runtime are merged on top of it.
var DefaultMaliciousDomains = []string{
	"phishingsite.com",
	"malware-distribution.net",
	"scam-website.org",
	"fake-login-page.com",
}

// Blocklist is the read side of a set of known-malicious hostnames.
type Blocklist interface {
	Contains(domain string) bool
}

// DomainSet is an exact-match set of hostnames. Keys are stored lowercased
// without a trailing dot.
type DomainSet map[string]struct{}

// NewDomainSet builds a set from the given hostnames, skipping blanks.
func NewDomainSet(domains ...string) DomainSet {
	set := make(DomainSet, len(domains))
	for _, d := range domains {
		if d = canonicalHost(d); d != "" {
			set[d] = struct{}{}
		}
	}
	return set
}

// Contains reports whether domain is in the set. No parent-domain matching.
func (s DomainSet) Contains(domain string) bool {
	if s == nil {
		return false
	}
	_, ok := s[canonicalHost(domain)]
	return ok
}

// Len returns the number of hostnames in the set.
func (s DomainSet) Len() int {
	return len(s)
}

// Domains returns the hostnames in no particular order.
func (s DomainSet) Domains() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	return out
}

// IsBlocked checks domain against the blocklist. A nil blocklist blocks
// nothing. Comparison is case-insensitive and exact.
func IsBlocked(domain string, blocklist Blocklist) (bool, error) {
	host := canonicalHost(domain)
	if host == "" {
		return false, fmt.Errorf("%w: empty domain", ErrInvalidInput)
	}
	if blocklist == nil {
		return false, nil
	}
	return blocklist.Contains(host), nil
}

func canonicalHost(domain string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(domain), "."))
}
