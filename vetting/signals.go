package vetting

import (
	"context"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"
)

// SecuritySignals are the boolean security properties observed for a domain.
// The zero value means nothing was observed.
type SecuritySignals struct {
	HasHTTPS          bool `json:"has_https" yaml:"has_https"`
	HasHSTS           bool `json:"has_hsts" yaml:"has_hsts"`
	HasCSP            bool `json:"has_csp" yaml:"has_csp"`
	HasXFrameOptions  bool `json:"has_x_frame_options" yaml:"has_x_frame_options"`
	HasXXSSProtection bool `json:"has_x_xss_protection" yaml:"has_x_xss_protection"`
}

// SignalProvider supplies signals for a page URL. Implementations may probe
// the network, read a cache, or make them up.
type SignalProvider interface {
	Signals(ctx context.Context, u *url.URL) (SecuritySignals, error)
}

// StaticProvider returns fixed signals per host, falling back to Default.
type StaticProvider struct {
	ByHost  map[string]SecuritySignals
	Default SecuritySignals
}

// Signals implements SignalProvider.
func (p *StaticProvider) Signals(_ context.Context, u *url.URL) (SecuritySignals, error) {
	if u == nil {
		return SecuritySignals{}, ErrInvalidInput
	}
	host := canonicalHost(u.Hostname())
	for h, sig := range p.ByHost {
		if canonicalHost(h) == host {
			return sig, nil
		}
	}
	return p.Default, nil
}

// Header presence probabilities used by RandomProvider.
const (
	hstsProbability           = 0.7
	cspProbability            = 0.5
	xFrameOptionsProbability  = 0.6
	xXSSProtectionProbability = 0.4
)

// RandomProvider is a placeholder signal source for demos. HTTPS follows the
// URL scheme; every header is a weighted coin flip.
type RandomProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomProvider creates a RandomProvider. A nil src seeds from the clock.
func NewRandomProvider(src rand.Source) *RandomProvider {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1)
	}
	return &RandomProvider{rng: rand.New(src)}
}

// Signals implements SignalProvider.
func (p *RandomProvider) Signals(_ context.Context, u *url.URL) (SecuritySignals, error) {
	if u == nil {
		return SecuritySignals{}, ErrInvalidInput
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return SecuritySignals{
		HasHTTPS:          strings.EqualFold(u.Scheme, "https"),
		HasHSTS:           p.rng.Float64() < hstsProbability,
		HasCSP:            p.rng.Float64() < cspProbability,
		HasXFrameOptions:  p.rng.Float64() < xFrameOptionsProbability,
		HasXXSSProtection: p.rng.Float64() < xXSSProtectionProbability,
	}, nil
}
