// Package generate orchestrates one grounded drafting call end-to-end:
// retrieve, attribute, generate, score, and record.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/disclosure-cli/internal/audit"
	"github.com/sells-group/disclosure-cli/internal/citation"
	"github.com/sells-group/disclosure-cli/internal/confidence"
	"github.com/sells-group/disclosure-cli/internal/model"
	"github.com/sells-group/disclosure-cli/internal/yoy"
	"github.com/sells-group/disclosure-cli/pkg/anthropic"
	"github.com/sells-group/disclosure-cli/pkg/retrieval"
)

// Config holds the engine's generation settings.
type Config struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	TopK        int
	Templates   Templates
}

// Request describes one section drafting call.
type Request struct {
	Kind             model.SectionKind
	Ticker           string
	FiscalYear       string
	Data             *model.ProvidedData
	IncludeCitations bool
	IncludeYoY       bool
}

// ReviseRequest describes one revision of previously drafted text.
type ReviseRequest struct {
	Kind         model.SectionKind
	Ticker       string
	FiscalYear   string
	OriginalText string
	Updates      map[string]string
	Reason       string
}

// Engine executes drafting requests against the external retrieval and
// text-generation capabilities. An Engine belongs to one audit session and
// must not be used by concurrent requests; engines for different sessions
// share no state.
type Engine struct {
	retriever retrieval.Client
	llm       anthropic.Client
	citations *citation.Manager
	analyzer  *yoy.Analyzer
	scorer    *confidence.Calculator
	audit     *audit.Logger
	cfg       Config
}

// New creates an Engine bound to the given audit session.
func New(retriever retrieval.Client, llm anthropic.Client, scorer *confidence.Calculator, auditLog *audit.Logger, cfg Config) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = 8
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Engine{
		retriever: retriever,
		llm:       llm,
		citations: citation.NewManager(),
		analyzer:  yoy.New(),
		scorer:    scorer,
		audit:     auditLog,
		cfg:       cfg,
	}
}

// References renders the reference list for the most recent drafting call.
func (e *Engine) References() string {
	return e.citations.References()
}

// DraftSection executes one grounded generation: retrieve passages (with a
// company-wide fallback when the section filter matches nothing), attribute
// them, generate, score, and record. An empty retrieval result is not an
// error; it proceeds with zero sources and the score degrades naturally. A
// text-generation failure is returned unchanged and never audit-logged as a
// generation.
func (e *Engine) DraftSection(ctx context.Context, req Request) (*model.GenerationResult, error) {
	log := zap.L().With(
		zap.String("section", req.Kind.String()),
		zap.String("ticker", req.Ticker),
		zap.String("fiscal_year", req.FiscalYear),
	)

	query := retrievalQuery(req.Kind, req.Ticker)
	passages, err := e.retriever.Search(ctx, retrieval.Query{
		Text:    query,
		K:       e.cfg.TopK,
		Ticker:  req.Ticker,
		Section: req.Kind.Filter(),
	})
	if err != nil {
		return nil, eris.Wrap(err, "generate: retrieve passages")
	}

	if len(passages) == 0 {
		// Degrade to company-wide context before giving up on grounding.
		passages, err = e.retriever.Search(ctx, retrieval.Query{
			Text:   query,
			K:      e.cfg.TopK,
			Ticker: req.Ticker,
		})
		if err != nil {
			return nil, eris.Wrap(err, "generate: retrieve passages (fallback)")
		}
		log.Info("section-filtered retrieval empty, fell back to company-wide search",
			zap.Int("passages", len(passages)))
	}

	var contextBlock string
	if req.IncludeCitations {
		contextBlock, _ = e.citations.FormatForPrompt(passages)
	} else {
		e.citations.Reset()
		contextBlock = plainContext(passages)
	}

	var yoyMetrics []model.YoYMetric
	var yoyTable string
	if !req.Data.Empty() && req.IncludeYoY && len(req.Data.Fields) > 0 {
		yoyMetrics = e.analyzer.Analyze(req.Data.Fields)
		yoyTable = e.analyzer.Table()
	}

	if !req.Data.Empty() {
		e.audit.RecordDataProvided(req.Data.Narrative, req.Data.Fields, req.Ticker, req.FiscalYear)
	}

	prompt := buildPrompt(e.cfg.Templates, req.Kind, req.Ticker, req.FiscalYear, contextBlock, req.Data)

	text, err := e.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	score := e.scorer.Score(req.Data, passages, req.Kind)
	e.audit.RecordGeneration(req.Kind, text, e.citations.Citations(), score, req.Ticker, req.FiscalYear)

	log.Info("section drafted",
		zap.Int("passages", len(passages)),
		zap.Int("citations", len(e.citations.Citations())),
		zap.Int("text_length", len(text)),
		zap.Float64("confidence", score.Overall),
	)

	return &model.GenerationResult{
		Text:         text,
		Citations:    e.citations.Citations(),
		Confidence:   score,
		YoYMetrics:   yoyMetrics,
		YoYTable:     yoyTable,
		SourcesCount: len(passages),
	}, nil
}

// Revise regenerates previously drafted text with user-provided updates and
// records a revision entry tying the new text to the old by hash.
func (e *Engine) Revise(ctx context.Context, req ReviseRequest) (string, error) {
	prompt := buildRevisionPrompt(req.Kind, req.FiscalYear, req.OriginalText, req.Updates)

	text, err := e.complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	e.audit.RecordRevision(req.Kind, req.OriginalText, text, req.Reason, req.Ticker, req.FiscalYear)
	return text, nil
}

// complete invokes the text-generation capability once. Failures propagate
// unchanged; retrying a paid generation call is the caller's decision.
func (e *Engine) complete(ctx context.Context, prompt string) (string, error) {
	temp := e.cfg.Temperature
	resp, err := e.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		System:      e.cfg.Templates.System,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrap(err, "generate: completion")
	}
	resp.Usage.LogUsage(e.cfg.Model, "draft")

	text := resp.Text()
	if text == "" {
		return "", eris.New("generate: empty completion")
	}
	return text, nil
}

// plainContext formats passages without citation attribution.
func plainContext(passages []retrieval.Passage) string {
	parts := make([]string, 0, len(passages))
	for i, p := range passages {
		header := fmt.Sprintf("[Source %d: %s - %s - Filed: %s]", i+1, p.Company, p.Section, p.FilingDate)
		parts = append(parts, header+"\n"+p.Text)
	}
	return strings.Join(parts, "\n\n---\n\n")
}
