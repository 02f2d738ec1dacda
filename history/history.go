// Package history keeps a bounded, most-recent-first record of domain
// verdicts and email classifications.
package history

import (
	"context"
	"errors"
	"strings"

	"security-assistant/mail"
	"security-assistant/vetting"
)

// DefaultLimit is the number of entries kept per history.
const DefaultLimit = 100

// ErrNotFound is returned when a lookup has no matching entry.
var ErrNotFound = errors.New("not found")

// DomainRecord is a stored domain verdict.
type DomainRecord struct {
	ID string `json:"id"`
	vetting.DomainVerdict
}

// EmailRecord is a stored email classification.
type EmailRecord struct {
	ID string `json:"id"`
	mail.Result
}

// Store persists verdict and classification history. Listings are newest
// first; a limit <= 0 returns everything retained.
type Store interface {
	AddDomain(ctx context.Context, v vetting.DomainVerdict) error
	Domains(ctx context.Context, limit int) ([]DomainRecord, error)
	LatestDomain(ctx context.Context, domain string) (DomainRecord, error)
	AddEmail(ctx context.Context, r mail.Result) error
	Emails(ctx context.Context, limit int) ([]EmailRecord, error)
	Close() error
}

func domainKey(domain string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(domain)), ".")
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
