package vetting

import (
	"fmt"
	"strings"
	"time"
)

// Status is the three-tier classification of a domain.
type Status string

const (
	StatusSafe       Status = "safe"
	StatusSuspicious Status = "suspicious"
	StatusUnsafe     Status = "unsafe"
)

// ParseStatus reconstructs a Status from its string representation.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusSafe:
		return StatusSafe, nil
	case StatusSuspicious:
		return StatusSuspicious, nil
	case StatusUnsafe:
		return StatusUnsafe, nil
	default:
		return "", fmt.Errorf("invalid status: %q", s)
	}
}

// Label returns the upper-case form shown to users, e.g. "UNSAFE".
func (s Status) Label() string {
	return strings.ToUpper(string(s))
}

// Rank orders statuses from least to most trusted: unsafe < suspicious < safe.
func (s Status) Rank() int {
	switch s {
	case StatusSafe:
		return 2
	case StatusSuspicious:
		return 1
	default:
		return 0
	}
}

// DomainVerdict is the result of one domain evaluation. It is built once by
// the scorer and never modified afterwards.
type DomainVerdict struct {
	Domain    string    `json:"domain"`
	Status    Status    `json:"status"`
	Score     int       `json:"score"`
	Reasons   []string  `json:"reasons"`
	Timestamp time.Time `json:"timestamp"`
}

// Blocked reports whether the verdict came from the blocklist override.
func (v DomainVerdict) Blocked() bool {
	return len(v.Reasons) == 1 && v.Reasons[0] == ReasonKnownMalicious
}
