package monitor

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"security-assistant/vetting"
)

// Session tracks the page currently shown in one tab. It only re-evaluates
// when the hostname changes. Safe for concurrent use.
type Session struct {
	ev *Evaluator

	mu      sync.Mutex
	current vetting.DomainVerdict
	pageURL *url.URL
}

// NewSession creates an empty session.
func NewSession(ev *Evaluator) *Session {
	return &Session{ev: ev}
}

// Observe records a navigation to rawURL. changed is false when the host is
// the one already being shown, in which case the verdict is zero.
func (s *Session) Observe(ctx context.Context, rawURL string) (v vetting.DomainVerdict, changed bool, err error) {
	u, err := vetting.ParseURL(rawURL)
	if err != nil {
		return vetting.DomainVerdict{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pageURL != nil && sameHost(s.pageURL, u) {
		return vetting.DomainVerdict{}, false, nil
	}
	v, err = s.ev.Evaluate(ctx, u)
	if err != nil {
		return vetting.DomainVerdict{}, false, fmt.Errorf("evaluate %s: %w", u.Hostname(), err)
	}
	s.pageURL = u
	s.current = v
	return v, true, nil
}

// Refresh re-evaluates the current page regardless of host changes.
func (s *Session) Refresh(ctx context.Context) (vetting.DomainVerdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pageURL == nil {
		return vetting.DomainVerdict{}, fmt.Errorf("%w: no page observed", vetting.ErrInvalidInput)
	}
	v, err := s.ev.Evaluate(ctx, s.pageURL)
	if err != nil {
		return vetting.DomainVerdict{}, err
	}
	s.current = v
	return v, nil
}

// Current returns the latest verdict and whether one exists.
func (s *Session) Current() (vetting.DomainVerdict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.pageURL != nil
}

func sameHost(a, b *url.URL) bool {
	return vetting.NormalizeDomain(a.Hostname()) == vetting.NormalizeDomain(b.Hostname())
}
