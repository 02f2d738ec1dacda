// Package monitor turns page visits into recorded, notified domain verdicts.
package monitor

import (
	"context"
	"io"
	"log/slog"
	"net/url"

	"security-assistant/vetting"
)

// Recorder stores domain verdicts.
type Recorder interface {
	AddDomain(ctx context.Context, v vetting.DomainVerdict) error
}

// Observer is told about every verdict.
type Observer interface {
	ObserveVerdict(status vetting.Status)
}

// Evaluator scores domains and fans the verdict out to history,
// notifications and metrics. Side-effect failures are logged, never returned.
type Evaluator struct {
	scorer    *vetting.SecurityScorer
	provider  vetting.SignalProvider
	blocklist vetting.Blocklist
	recorder  Recorder
	notifier  vetting.Notifier
	observer  Observer
	logger    *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

func WithScorer(s *vetting.SecurityScorer) Option {
	return func(e *Evaluator) { e.scorer = s }
}

func WithRecorder(r Recorder) Option {
	return func(e *Evaluator) { e.recorder = r }
}

func WithNotifier(n vetting.Notifier) Option {
	return func(e *Evaluator) { e.notifier = n }
}

func WithObserver(o Observer) Option {
	return func(e *Evaluator) { e.observer = o }
}

// NewEvaluator creates an Evaluator. Pass nil for logger to disable logging.
func NewEvaluator(provider vetting.SignalProvider, blocklist vetting.Blocklist, logger *slog.Logger, opts ...Option) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Evaluator{
		scorer:    vetting.NewSecurityScorer(),
		provider:  provider,
		blocklist: blocklist,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate obtains signals for u and scores its host. When the provider
// fails the host is scored with no signals.
func (e *Evaluator) Evaluate(ctx context.Context, u *url.URL) (vetting.DomainVerdict, error) {
	if u == nil || u.Hostname() == "" {
		return vetting.DomainVerdict{}, vetting.ErrInvalidInput
	}
	var signals vetting.SecuritySignals
	if e.provider != nil {
		sig, err := e.provider.Signals(ctx, u)
		if err != nil {
			e.logger.Warn("signal lookup failed, scoring without signals", "host", u.Hostname(), "error", err)
		} else {
			signals = sig
		}
	}
	return e.EvaluateSignals(ctx, vetting.NormalizeDomain(u.Hostname()), signals)
}

// EvaluateSignals scores domain with caller-supplied signals.
func (e *Evaluator) EvaluateSignals(ctx context.Context, domain string, signals vetting.SecuritySignals) (vetting.DomainVerdict, error) {
	v, err := e.scorer.Score(domain, signals, e.blocklist)
	if err != nil {
		return vetting.DomainVerdict{}, err
	}

	e.logger.Info("domain evaluated", "domain", v.Domain, "status", v.Status, "score", v.Score)

	if e.recorder != nil {
		if err := e.recorder.AddDomain(ctx, v); err != nil {
			e.logger.Warn("recording verdict failed", "domain", v.Domain, "error", err)
		}
	}
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, vetting.NotificationFor(v)); err != nil {
			e.logger.Warn("notification failed", "domain", v.Domain, "error", err)
		}
	}
	if e.observer != nil {
		e.observer.ObserveVerdict(v.Status)
	}
	return v, nil
}
