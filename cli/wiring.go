package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"security-assistant/config"
	"security-assistant/history"
	"security-assistant/mail"
	"security-assistant/vetting"
)

func newScorer(cfg config.Config) *vetting.SecurityScorer {
	return vetting.NewSecurityScorer(
		vetting.WithWeights(cfg.Scoring.Weights),
		vetting.WithThresholds(cfg.Scoring.Thresholds),
	)
}

func newProvider(cfg config.SignalsConfig) vetting.SignalProvider {
	if strings.EqualFold(strings.TrimSpace(cfg.Mode), config.SignalsModeStatic) {
		return &vetting.StaticProvider{ByHost: cfg.Static, Default: cfg.Default}
	}
	return vetting.NewRandomProvider(nil)
}

func newLexicon(cfg config.Config) (mail.Lexicon, error) {
	lex, err := mail.NewLexicon(cfg.Lexicon...)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}
	return lex, nil
}

func openHistory(cfg config.HistoryConfig, logger *slog.Logger) (history.Store, error) {
	if cfg.DBPath == "" {
		logger.Info("history kept in memory", "limit", cfg.Limit)
		return history.NewMemoryStore(cfg.Limit), nil
	}
	store, err := history.OpenSQLite(cfg.DBPath, cfg.Limit)
	if err != nil {
		return nil, err
	}
	logger.Info("history stored in sqlite", "path", cfg.DBPath, "limit", cfg.Limit)
	return store, nil
}
