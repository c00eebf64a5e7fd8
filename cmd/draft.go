package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/disclosure-cli/internal/confidence"
	"github.com/sells-group/disclosure-cli/internal/datainput"
	"github.com/sells-group/disclosure-cli/internal/generate"
	"github.com/sells-group/disclosure-cli/internal/model"
)

var (
	draftTicker      string
	draftYear        string
	draftSection     string
	draftDataFile    string
	draftSessionID   string
	draftNoCitations bool
	draftNoYoY       bool
	draftForce       bool
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft 10-K sections for a company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("draft"); err != nil {
			return err
		}

		ticker, err := resolveTicker(draftTicker)
		if err != nil {
			return err
		}

		kinds, err := sectionKinds(draftSection)
		if err != nil {
			return err
		}

		data := &model.ProvidedData{}
		if draftDataFile != "" {
			raw, err := os.ReadFile(draftDataFile)
			if err != nil {
				return eris.Wrapf(err, "read data file %s", draftDataFile)
			}
			data = datainput.ParseFinancialData(string(raw))
			if year := datainput.ParseFiscalYear(string(raw)); year != "" && draftYear == "" {
				draftYear = year
			}
		}

		// Without provided financials an MD&A draft would be built entirely
		// on prior-year figures, so ask for the data instead.
		if data.Empty() && wantsMDA(kinds) && !draftForce {
			fmt.Println(generate.ClarifyingQuestions(ticker, draftYear))
			return nil
		}

		sess, err := newSession(draftSessionID)
		if err != nil {
			return err
		}

		sess.Audit.RecordUserRequest(
			fmt.Sprintf("Draft %s section(s) for %s fiscal year %s", draftSection, ticker, draftYear),
			ticker, draftYear,
		)

		for _, kind := range kinds {
			result, err := sess.Engine.DraftSection(ctx, generate.Request{
				Kind:             kind,
				Ticker:           ticker,
				FiscalYear:       draftYear,
				Data:             data,
				IncludeCitations: !draftNoCitations,
				IncludeYoY:       !draftNoYoY,
			})
			if err != nil {
				return eris.Wrapf(err, "draft %s", kind)
			}

			fmt.Printf("# %s\n\n", kind.Title())
			fmt.Println(result.Text)
			if result.YoYTable != "" {
				fmt.Println(result.YoYTable)
			}
			if !draftNoCitations {
				fmt.Print(sess.Engine.References())
			}
			fmt.Println(confidence.Indicator(result.Confidence))
		}

		path, err := sess.finish(ctx)
		if err != nil {
			return eris.Wrap(err, "save audit log")
		}

		zap.L().Info("draft session complete",
			zap.String("session_id", sess.Audit.SessionID()),
			zap.String("ticker", ticker),
			zap.String("audit_log", path),
		)
		return nil
	},
}

// sectionKinds parses the --section flag, "both" expanding to business then
// MD&A in filing order.
func sectionKinds(flag string) ([]model.SectionKind, error) {
	if strings.EqualFold(flag, "both") {
		return []model.SectionKind{model.SectionBusiness, model.SectionMDA}, nil
	}
	kind, err := model.ParseSectionKind(flag)
	if err != nil {
		return nil, err
	}
	return []model.SectionKind{kind}, nil
}

func wantsMDA(kinds []model.SectionKind) bool {
	for _, k := range kinds {
		if k == model.SectionMDA {
			return true
		}
	}
	return false
}

func init() {
	draftCmd.Flags().StringVar(&draftTicker, "ticker", "", "company ticker (required)")
	draftCmd.Flags().StringVar(&draftYear, "year", "", "fiscal year (default: detected from data file)")
	draftCmd.Flags().StringVar(&draftSection, "section", "both", "section to draft: business, mda, or both")
	draftCmd.Flags().StringVar(&draftDataFile, "data-file", "", "file with current-year financials (text, markdown, or HTML)")
	draftCmd.Flags().StringVar(&draftSessionID, "session", "", "audit session id (default: random)")
	draftCmd.Flags().BoolVar(&draftNoCitations, "no-citations", false, "omit source attribution")
	draftCmd.Flags().BoolVar(&draftNoYoY, "no-yoy", false, "skip year-over-year analysis")
	draftCmd.Flags().BoolVar(&draftForce, "force", false, "draft MD&A even without provided financials")
	_ = draftCmd.MarkFlagRequired("ticker")
	rootCmd.AddCommand(draftCmd)
}
