package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/disclosure-cli/internal/audit"
	"github.com/sells-group/disclosure-cli/internal/datainput"
	"github.com/sells-group/disclosure-cli/internal/generate"
	"github.com/sells-group/disclosure-cli/internal/model"
)

var servePort int

type draftRequest struct {
	Ticker      string `json:"ticker"`
	FiscalYear  string `json:"fiscal_year"`
	Section     string `json:"section"`
	Data        string `json:"data"`
	NoCitations bool   `json:"no_citations"`
	NoYoY       bool   `json:"no_yoy"`
}

type draftResponse struct {
	SessionID            string                 `json:"session_id"`
	BusinessSection      string                 `json:"business_section,omitempty"`
	MDASection           string                 `json:"mda_section,omitempty"`
	Citations            []model.Citation       `json:"citations,omitempty"`
	Confidence           *model.ConfidenceScore `json:"confidence,omitempty"`
	YoYMetrics           []model.YoYMetric      `json:"yoy_analysis,omitempty"`
	YoYTable             string                 `json:"yoy_table,omitempty"`
	MissingDataQuestions string                 `json:"missing_data_questions,omitempty"`
	AuditLogPath         string                 `json:"audit_log_path,omitempty"`
	SourcesCount         int                    `json:"sources_count"`
}

// serveEnv carries the handler dependencies so the mux can be exercised with
// stubs.
type serveEnv struct {
	companies map[string]string
	draft     func(ctx context.Context, req draftRequest) (*draftResponse, error)
	loadAudit func(sessionID string) (*audit.SavedLog, error)
}

func newServeMux(env *serveEnv) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /companies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.companies)
	})

	mux.HandleFunc("POST /draft", func(w http.ResponseWriter, r *http.Request) {
		var req draftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
		if _, ok := env.companies[req.Ticker]; !ok {
			http.Error(w, `{"error":"unknown ticker"}`, http.StatusBadRequest)
			return
		}
		if req.Section == "" {
			req.Section = "both"
		}

		resp, err := env.draft(r.Context(), req)
		if err != nil {
			zap.L().Error("draft request failed",
				zap.String("ticker", req.Ticker),
				zap.Error(err),
			)
			http.Error(w, `{"error":"draft failed"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("GET /sessions/{id}/audit", func(w http.ResponseWriter, r *http.Request) {
		doc, err := env.loadAudit(r.PathValue("id"))
		if err != nil {
			http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sessionRegistry maps session ids served by this process to their log files.
type sessionRegistry struct {
	mu       sync.Mutex
	logFiles map[string]string
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{logFiles: map[string]string{}}
}

func (r *sessionRegistry) put(sessionID, logFile string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logFiles[sessionID] = logFile
}

func (r *sessionRegistry) get(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path, ok := r.logFiles[sessionID]
	return path, ok
}

// serveDraft runs one full drafting session for an HTTP request.
func serveDraft(ctx context.Context, registry *sessionRegistry, req draftRequest) (*draftResponse, error) {
	kinds, err := sectionKinds(req.Section)
	if err != nil {
		return nil, err
	}

	data := datainput.ParseFinancialData(req.Data)
	if req.FiscalYear == "" {
		req.FiscalYear = datainput.ParseFiscalYear(req.Data)
	}

	sess, err := newSession("")
	if err != nil {
		return nil, err
	}

	sess.Audit.RecordUserRequest(
		fmt.Sprintf("HTTP draft %s section(s) for %s fiscal year %s", req.Section, req.Ticker, req.FiscalYear),
		req.Ticker, req.FiscalYear,
	)

	resp := &draftResponse{SessionID: sess.Audit.SessionID()}
	if data.Empty() {
		resp.MissingDataQuestions = generate.ClarifyingQuestions(req.Ticker, req.FiscalYear)
	}

	for _, kind := range kinds {
		// An MD&A draft without financials would restate prior-year figures;
		// the questions in the response ask for the data instead.
		if kind == model.SectionMDA && data.Empty() {
			continue
		}

		result, err := sess.Engine.DraftSection(ctx, generate.Request{
			Kind:             kind,
			Ticker:           req.Ticker,
			FiscalYear:       req.FiscalYear,
			Data:             data,
			IncludeCitations: !req.NoCitations,
			IncludeYoY:       !req.NoYoY,
		})
		if err != nil {
			return nil, err
		}

		switch kind {
		case model.SectionMDA:
			resp.MDASection = result.Text
		default:
			resp.BusinessSection = result.Text
		}
		conf := result.Confidence
		resp.Confidence = &conf
		resp.Citations = result.Citations
		resp.YoYMetrics = result.YoYMetrics
		resp.YoYTable = result.YoYTable
		resp.SourcesCount = result.SourcesCount
	}

	path, err := sess.finish(ctx)
	if err != nil {
		return nil, err
	}
	resp.AuditLogPath = path
	registry.put(sess.Audit.SessionID(), path)

	return resp, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for drafting requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		registry := newSessionRegistry()
		env := &serveEnv{
			companies: cfg.CompanyNames(),
			draft: func(ctx context.Context, req draftRequest) (*draftResponse, error) {
				return serveDraft(ctx, registry, req)
			},
			loadAudit: func(sessionID string) (*audit.SavedLog, error) {
				path, ok := registry.get(sessionID)
				if !ok {
					return nil, eris.Errorf("session %s not found", sessionID)
				}
				return audit.LoadLog(path)
			},
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newServeMux(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
