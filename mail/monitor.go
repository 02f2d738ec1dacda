package mail

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// Message is one mailbox entry as seen by an inbox integration.
type Message struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
}

// Result is the classification of a single message.
type Result struct {
	MessageID string    `json:"message_id,omitempty"`
	Subject   string    `json:"subject"`
	IsSpam    bool      `json:"is_spam"`
	Matches   []string  `json:"matches"`
	Timestamp time.Time `json:"timestamp"`
}

// Recorder stores classification results.
type Recorder interface {
	AddEmail(ctx context.Context, r Result) error
}

// Observer is notified of every classification.
type Observer interface {
	ObserveClassification(isSpam bool)
}

// DefaultSeenLimit is how many processed message IDs a Monitor remembers.
const DefaultSeenLimit = 10000

// Monitor classifies each mailbox message once. Messages without an ID are
// always classified. Only the most recent processed IDs are remembered; an
// ID evicted from that window is classified again if it reappears.
type Monitor struct {
	lexicon   Lexicon
	recorder  Recorder
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
	seenLimit int

	seen *lru.Cache[string, struct{}]
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithRecorder stores every result.
func WithRecorder(r Recorder) MonitorOption {
	return func(m *Monitor) { m.recorder = r }
}

// WithObserver reports every classification.
func WithObserver(o Observer) MonitorOption {
	return func(m *Monitor) { m.observer = o }
}

// WithClock sets the time source for result timestamps.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

// WithSeenLimit caps the number of remembered message IDs.
func WithSeenLimit(n int) MonitorOption {
	return func(m *Monitor) { m.seenLimit = n }
}

// NewMonitor creates a Monitor. Pass nil for logger to disable logging.
func NewMonitor(lexicon Lexicon, logger *slog.Logger, opts ...MonitorOption) *Monitor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Monitor{
		lexicon:   lexicon,
		logger:    logger,
		now:       time.Now,
		seenLimit: DefaultSeenLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.seenLimit <= 0 {
		m.seenLimit = DefaultSeenLimit
	}
	// lru.New only fails for a non-positive size.
	m.seen, _ = lru.New[string, struct{}](m.seenLimit)
	return m
}

// Process classifies msg. It returns false when the message was already
// processed or has an empty subject.
func (m *Monitor) Process(ctx context.Context, msg Message) (Result, bool, error) {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		return Result{}, false, nil
	}
	if !m.markSeen(msg.ID) {
		return Result{}, false, nil
	}

	match := Match(subject, m.lexicon)
	res := Result{
		MessageID: msg.ID,
		Subject:   subject,
		IsSpam:    match.IsSpam(),
		Matches:   match.Keywords,
		Timestamp: m.now(),
	}

	if m.observer != nil {
		m.observer.ObserveClassification(res.IsSpam)
	}
	if m.recorder != nil {
		if err := m.recorder.AddEmail(ctx, res); err != nil {
			return res, true, err
		}
	}
	if res.IsSpam {
		m.logger.Info("message classified as spam", "message_id", msg.ID, "matches", len(res.Matches))
	}
	return res, true, nil
}

// ProcessAll classifies msgs concurrently and returns the processed results
// in input order.
func (m *Monitor) ProcessAll(ctx context.Context, msgs []Message) ([]Result, error) {
	results := make([]Result, len(msgs))
	processed := make([]bool, len(msgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, msg := range msgs {
		g.Go(func() error {
			res, ok, err := m.Process(gctx, msg)
			if err != nil {
				return err
			}
			results[i], processed[i] = res, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(msgs))
	for i, ok := range processed {
		if ok {
			out = append(out, results[i])
		}
	}
	return out, nil
}

// Forget clears the processed mark for id so it is classified again.
func (m *Monitor) Forget(id string) {
	m.seen.Remove(id)
}

func (m *Monitor) markSeen(id string) bool {
	if id == "" {
		return true
	}
	found, _ := m.seen.ContainsOrAdd(id, struct{}{})
	return !found
}
