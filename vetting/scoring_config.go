package vetting

import "fmt"

// Weights holds the points each present signal contributes. They must add
// up to 100 so a fully hardened domain scores exactly 100.
type Weights struct {
	HTTPS          int `json:"https" yaml:"https"`                       // Default: 30
	HSTS           int `json:"hsts" yaml:"hsts"`                         // Default: 20
	CSP            int `json:"csp" yaml:"csp"`                           // Default: 20
	XFrameOptions  int `json:"x_frame_options" yaml:"x_frame_options"`   // Default: 15
	XXSSProtection int `json:"x_xss_protection" yaml:"x_xss_protection"` // Default: 15
}

// DefaultWeights returns the standard signal weights.
func DefaultWeights() Weights {
	return Weights{
		HTTPS:          30,
		HSTS:           20,
		CSP:            20,
		XFrameOptions:  15,
		XXSSProtection: 15,
	}
}

// Total returns the sum of all weights.
func (w Weights) Total() int {
	return w.HTTPS + w.HSTS + w.CSP + w.XFrameOptions + w.XXSSProtection
}

// Validate rejects negative weights and weights that do not sum to 100.
func (w Weights) Validate() error {
	for name, v := range map[string]int{
		"https":            w.HTTPS,
		"hsts":             w.HSTS,
		"csp":              w.CSP,
		"x_frame_options":  w.XFrameOptions,
		"x_xss_protection": w.XXSSProtection,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %d", name, v)
		}
	}
	if total := w.Total(); total != 100 {
		return fmt.Errorf("weights must sum to 100, got %d", total)
	}
	return nil
}

// ScoringThresholds defines the lower bounds (inclusive) of each tier.
type ScoringThresholds struct {
	SafeMin       int `json:"safe_min" yaml:"safe_min"`             // Default: 80
	SuspiciousMin int `json:"suspicious_min" yaml:"suspicious_min"` // Default: 50
	// Unsafe: below SuspiciousMin
}

// DefaultScoringThresholds returns default thresholds
func DefaultScoringThresholds() ScoringThresholds {
	return ScoringThresholds{
		SafeMin:       80,
		SuspiciousMin: 50,
	}
}

// Validate checks that the thresholds are ordered and within 0..100.
func (t ScoringThresholds) Validate() error {
	if t.SuspiciousMin < 0 || t.SafeMin > 100 {
		return fmt.Errorf("thresholds must lie within 0..100")
	}
	if t.SuspiciousMin >= t.SafeMin {
		return fmt.Errorf("suspicious_min (%d) must be below safe_min (%d)", t.SuspiciousMin, t.SafeMin)
	}
	return nil
}

// StatusFor maps a score to a status, testing tiers from the top down.
func (t ScoringThresholds) StatusFor(score int) Status {
	switch {
	case score >= t.SafeMin:
		return StatusSafe
	case score >= t.SuspiciousMin:
		return StatusSuspicious
	default:
		return StatusUnsafe
	}
}
