package vetting

import (
	"fmt"
	"strings"
	"time"
)

// Reasons attached to a verdict, in the order signals are evaluated.
const (
	ReasonKnownMalicious = "Known malicious domain"
	ReasonHTTPS          = "HTTPS enabled"
	ReasonNoHTTPS        = "No HTTPS — insecure connection"
	ReasonHSTS           = "HSTS header present"
	ReasonCSP            = "Content Security Policy present"
	ReasonXFrameOptions  = "X-Frame-Options header present"
	ReasonXXSSProtection = "X-XSS-Protection header present"
)

// SecurityScorer turns signal observations into a DomainVerdict. It holds no
// mutable state and is safe for concurrent use.
type SecurityScorer struct {
	weights    Weights
	thresholds ScoringThresholds
	now        func() time.Time
}

// Option configures a SecurityScorer.
type Option func(*SecurityScorer)

// WithWeights overrides the default signal weights.
func WithWeights(w Weights) Option {
	return func(s *SecurityScorer) { s.weights = w }
}

// WithThresholds overrides the default tier thresholds.
func WithThresholds(t ScoringThresholds) Option {
	return func(s *SecurityScorer) { s.thresholds = t }
}

// WithClock sets the time source used to stamp verdicts.
func WithClock(now func() time.Time) Option {
	return func(s *SecurityScorer) { s.now = now }
}

// NewSecurityScorer creates a scorer with default weights and thresholds
// unless overridden by opts.
func NewSecurityScorer(opts ...Option) *SecurityScorer {
	s := &SecurityScorer{
		weights:    DefaultWeights(),
		thresholds: DefaultScoringThresholds(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score evaluates domain with the default scorer.
func Score(domain string, signals SecuritySignals, blocklist Blocklist) (DomainVerdict, error) {
	return NewSecurityScorer().Score(domain, signals, blocklist)
}

// Score checks the blocklist first; a listed domain is UNSAFE with score 0
// and no signal is looked at. Otherwise each present signal adds its weight.
// HTTPS is the only signal that also records a reason when absent.
func (s *SecurityScorer) Score(domain string, signals SecuritySignals, blocklist Blocklist) (DomainVerdict, error) {
	domain = strings.TrimSpace(domain)
	blocked, err := IsBlocked(domain, blocklist)
	if err != nil {
		return DomainVerdict{}, fmt.Errorf("score domain: %w", err)
	}

	if blocked {
		return DomainVerdict{
			Domain:    domain,
			Status:    StatusUnsafe,
			Score:     0,
			Reasons:   []string{ReasonKnownMalicious},
			Timestamp: s.now(),
		}, nil
	}

	score := 0
	reasons := make([]string, 0, 5)

	// HTTPS
	if signals.HasHTTPS {
		score += s.weights.HTTPS
		reasons = append(reasons, ReasonHTTPS)
	} else {
		reasons = append(reasons, ReasonNoHTTPS)
	}

	// HSTS
	if signals.HasHSTS {
		score += s.weights.HSTS
		reasons = append(reasons, ReasonHSTS)
	}

	// Content Security Policy
	if signals.HasCSP {
		score += s.weights.CSP
		reasons = append(reasons, ReasonCSP)
	}

	// X-Frame-Options
	if signals.HasXFrameOptions {
		score += s.weights.XFrameOptions
		reasons = append(reasons, ReasonXFrameOptions)
	}

	// X-XSS-Protection
	if signals.HasXXSSProtection {
		score += s.weights.XXSSProtection
		reasons = append(reasons, ReasonXXSSProtection)
	}

	return DomainVerdict{
		Domain:    domain,
		Status:    s.thresholds.StatusFor(score),
		Score:     score,
		Reasons:   reasons,
		Timestamp: s.now(),
	}, nil
}
