package main

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/disclosure-cli/internal/audit"
	"github.com/sells-group/disclosure-cli/internal/confidence"
	"github.com/sells-group/disclosure-cli/internal/generate"
	"github.com/sells-group/disclosure-cli/pkg/anthropic"
	"github.com/sells-group/disclosure-cli/pkg/retrieval"
)

// session bundles one audit session with the engine bound to it.
type session struct {
	Audit  *audit.Logger
	Engine *generate.Engine
}

// newSession creates the audit log directory, opens a new audit session, and
// wires an engine to it from config.
func newSession(sessionID string) (*session, error) {
	if err := os.MkdirAll(cfg.Audit.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create audit dir %s", cfg.Audit.Dir)
	}

	templates, err := generate.LoadTemplates(cfg.Generate.TemplatesPath)
	if err != nil {
		return nil, err
	}

	auditLog := audit.NewLogger(cfg.Audit.Dir, sessionID)

	retriever := retrieval.NewClient(cfg.Retrieval.BaseURL,
		retrieval.WithRateLimit(cfg.Retrieval.RatePerSec, cfg.Retrieval.RateBurst))
	llm := anthropic.NewClient(cfg.Anthropic.Key)
	scorer := confidence.NewCalculator(cfg.Confidence.Weights())

	eng := generate.New(retriever, llm, scorer, auditLog, generate.Config{
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Temperature: cfg.Anthropic.Temperature,
		TopK:        cfg.Retrieval.TopK,
		Templates:   templates,
	})

	return &session{Audit: auditLog, Engine: eng}, nil
}

// finish persists the session log and records it in the session index. The
// index is best-effort: a failure there is logged, not returned.
func (s *session) finish(ctx context.Context) (string, error) {
	path, err := s.Audit.Save()
	if err != nil {
		return "", err
	}

	ix, err := audit.OpenIndex(cfg.Audit.IndexDSN)
	if err != nil {
		zap.L().Warn("session index unavailable", zap.Error(err))
		return path, nil
	}
	defer ix.Close()

	if err := ix.Migrate(ctx); err != nil {
		zap.L().Warn("session index migrate failed", zap.Error(err))
		return path, nil
	}
	if err := ix.RecordSession(ctx, s.Audit.Summary()); err != nil {
		zap.L().Warn("session index record failed", zap.Error(err))
	}
	return path, nil
}

// resolveTicker validates a ticker against the company registry and returns
// its canonical uppercase form.
func resolveTicker(ticker string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(ticker))
	registry := cfg.CompanyNames()
	if _, ok := registry[upper]; ok {
		return upper, nil
	}

	supported := make([]string, 0, len(registry))
	for t := range registry {
		supported = append(supported, t)
	}
	sort.Strings(supported)
	return "", eris.Errorf("unknown ticker %q (supported: %s)", ticker, strings.Join(supported, ", "))
}
