package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/disclosure-cli/internal/confidence"
	"github.com/sells-group/disclosure-cli/internal/datainput"
	"github.com/sells-group/disclosure-cli/internal/generate"
	"github.com/sells-group/disclosure-cli/internal/model"
)

var (
	batchTickers string
	batchYear    string
	batchDataDir string
	batchOutDir  string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Draft sections for multiple companies",
	Long:  "Drafts Business and MD&A sections for each ticker in its own audit session, writing one markdown file per section.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		tickers, err := parseBatchTickers(batchTickers)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
			return eris.Wrapf(err, "create output dir %s", batchOutDir)
		}

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentSessions)

		for _, ticker := range tickers {
			g.Go(func() error {
				if err := batchDraftOne(ctx, ticker); err != nil {
					return eris.Wrapf(err, "draft %s", ticker)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("batch complete", zap.Int("tickers", len(tickers)))
		return nil
	},
}

// batchDraftOne runs one full drafting session for a ticker and writes its
// sections to the output directory.
func batchDraftOne(ctx context.Context, ticker string) error {
	data := loadBatchData(ticker)

	sess, err := newSession("")
	if err != nil {
		return err
	}

	sess.Audit.RecordUserRequest(
		fmt.Sprintf("Batch draft for %s fiscal year %s", ticker, batchYear),
		ticker, batchYear,
	)

	for _, kind := range []model.SectionKind{model.SectionBusiness, model.SectionMDA} {
		result, err := sess.Engine.DraftSection(ctx, generate.Request{
			Kind:             kind,
			Ticker:           ticker,
			FiscalYear:       batchYear,
			Data:             data,
			IncludeCitations: true,
			IncludeYoY:       true,
		})
		if err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", kind.Title())
		b.WriteString(result.Text)
		b.WriteString("\n")
		if result.YoYTable != "" {
			b.WriteString(result.YoYTable)
		}
		b.WriteString(sess.Engine.References())
		b.WriteString(confidence.Indicator(result.Confidence))

		out := filepath.Join(batchOutDir, fmt.Sprintf("%s_%s.md", strings.ToLower(ticker), kind))
		if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
			return eris.Wrapf(err, "write %s", out)
		}
	}

	path, err := sess.finish(ctx)
	if err != nil {
		return err
	}

	zap.L().Info("ticker drafted",
		zap.String("ticker", ticker),
		zap.String("session_id", sess.Audit.SessionID()),
		zap.String("audit_log", path),
	)
	return nil
}

// loadBatchData reads <ticker>.md, .txt, or .html from the data directory.
// Missing data is not an error; the draft proceeds retrieval-only.
func loadBatchData(ticker string) *model.ProvidedData {
	if batchDataDir == "" {
		return &model.ProvidedData{}
	}
	for _, ext := range []string{".md", ".txt", ".html"} {
		path := filepath.Join(batchDataDir, strings.ToLower(ticker)+ext)
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return datainput.ParseFinancialData(string(raw))
	}
	zap.L().Info("no data file for ticker, drafting retrieval-only", zap.String("ticker", ticker))
	return &model.ProvidedData{}
}

func parseBatchTickers(flag string) ([]string, error) {
	var out []string
	for _, raw := range strings.Split(flag, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		ticker, err := resolveTicker(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ticker)
	}
	if len(out) == 0 {
		return nil, eris.New("no tickers given")
	}
	return out, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchTickers, "tickers", "", "comma-separated tickers (required)")
	batchCmd.Flags().StringVar(&batchYear, "year", "", "fiscal year")
	batchCmd.Flags().StringVar(&batchDataDir, "data-dir", "", "directory with per-ticker data files (<ticker>.md)")
	batchCmd.Flags().StringVar(&batchOutDir, "out", "drafts", "output directory")
	_ = batchCmd.MarkFlagRequired("tickers")
	rootCmd.AddCommand(batchCmd)
}
