// Package feed keeps the known-malicious domain set current. Readers query a
// Store; a Syncer builds complete replacement sets from seeds, remote feeds
// and local list files and swaps them in atomically.
package feed

import (
	"sync/atomic"

	"security-assistant/vetting"
)

// Store holds the active blocklist. Every Replace installs a whole new set,
// so concurrent readers see either the old set or the new one.
type Store struct {
	set atomic.Pointer[vetting.DomainSet]
}

// NewStore creates a store seeded with domains.
func NewStore(domains ...string) *Store {
	s := &Store{}
	s.Replace(vetting.NewDomainSet(domains...))
	return s
}

// Contains implements vetting.Blocklist.
func (s *Store) Contains(domain string) bool {
	return s.Snapshot().Contains(domain)
}

// Replace swaps in set. The caller must not modify set afterwards.
func (s *Store) Replace(set vetting.DomainSet) {
	if set == nil {
		set = vetting.DomainSet{}
	}
	s.set.Store(&set)
}

// Snapshot returns the current set. It must be treated as read-only.
func (s *Store) Snapshot() vetting.DomainSet {
	p := s.set.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Size returns the number of domains in the current set.
func (s *Store) Size() int {
	return s.Snapshot().Len()
}
