// Package audit records every request, data submission, and generation event
// as a hash-stamped entry and persists the session as a single JSON document.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/disclosure-cli/internal/model"
)

// EventType classifies an audit entry.
type EventType string

const (
	EventUserRequest  EventType = "user_request"
	EventDataProvided EventType = "data_provided"
	EventGeneration   EventType = "generation"
	EventRevision     EventType = "revision"
)

// hashHexLen is the stored hex prefix length of the content digest. Enough
// to avoid collisions at this record volume; the hash is a tamper-evidence
// checksum stored alongside the full content, not a content address.
const hashHexLen = 16

// Entry is one append-only audit record. Once appended it is never modified;
// the content hash exists to make later modification evident.
type Entry struct {
	Timestamp   string         `json:"timestamp"`
	SessionID   string         `json:"session_id"`
	EventType   EventType      `json:"event_type"`
	Ticker      string         `json:"ticker,omitempty"`
	FiscalYear  string         `json:"fiscal_year,omitempty"`
	ContentHash string         `json:"content_hash"`
	Content     map[string]any `json:"content"`
	Metadata    map[string]any `json:"metadata"`
}

// Logger accumulates the audit entries of one session. Callers must
// serialize use per session; separate sessions are independent.
type Logger struct {
	sessionID string
	createdAt time.Time
	entries   []Entry
	logFile   string
}

// NewLogger creates a session logger that will persist under dir. The
// directory is not created here; initialization is the caller's explicit
// responsibility. An empty sessionID gets a generated one.
func NewLogger(dir, sessionID string) *Logger {
	if sessionID == "" {
		sessionID = uuid.NewString()[:8]
	}
	now := time.Now().UTC()
	return &Logger{
		sessionID: sessionID,
		createdAt: now,
		logFile:   filepath.Join(dir, fmt.Sprintf("audit_%s_%s.json", sessionID, now.Format("20060102_150405"))),
	}
}

// SessionID returns the session identifier.
func (l *Logger) SessionID() string { return l.sessionID }

// LogFile returns the path the session will be persisted to.
func (l *Logger) LogFile() string { return l.logFile }

// Entries returns the ordered entry sequence.
func (l *Logger) Entries() []Entry { return l.entries }

// hashContent serializes content canonically (JSON with sorted map keys) and
// returns a truncated hex digest. The hash depends on content only, never on
// timestamps or insertion order.
func hashContent(content any) string {
	b, err := json.Marshal(content)
	if err != nil {
		zap.L().Warn("audit: hash content marshal failed", zap.Error(err))
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:hashHexLen]
}

func (l *Logger) append(et EventType, content map[string]any, ticker, fiscalYear string, metadata map[string]any) Entry {
	if metadata == nil {
		metadata = map[string]any{}
	}
	entry := Entry{
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		SessionID:   l.sessionID,
		EventType:   et,
		Ticker:      ticker,
		FiscalYear:  fiscalYear,
		ContentHash: hashContent(content),
		Content:     content,
		Metadata:    metadata,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// RecordUserRequest logs a user request message.
func (l *Logger) RecordUserRequest(message, ticker, fiscalYear string) Entry {
	return l.append(EventUserRequest,
		map[string]any{"message": message},
		ticker, fiscalYear,
		map[string]any{"message_length": len(message)},
	)
}

// RecordDataProvided logs a provided-data submission with its parsed fields.
func (l *Logger) RecordDataProvided(rawInput string, fields map[string]string, ticker, fiscalYear string) Entry {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return l.append(EventDataProvided,
		map[string]any{
			"raw_input":   rawInput,
			"parsed_data": fields,
		},
		ticker, fiscalYear,
		map[string]any{
			"input_length":  len(rawInput),
			"fields_parsed": len(fields),
			"fields":        names,
		},
	)
}

// RecordGeneration logs a completed generation with its full source list and
// confidence breakdown. Failed generations are never recorded.
func (l *Logger) RecordGeneration(kind model.SectionKind, text string, sources []model.Citation, conf model.ConfidenceScore, ticker, fiscalYear string) Entry {
	return l.append(EventGeneration,
		map[string]any{
			"section":        kind.String(),
			"generated_text": text,
			"text_length":    len(text),
		},
		ticker, fiscalYear,
		map[string]any{
			"sources_count": len(sources),
			"sources":       sources,
			"confidence": map[string]any{
				"overall":        conf.Overall,
				"data_coverage":  conf.DataCoverage,
				"source_quality": conf.SourceQuality,
			},
		},
	)
}

// RecordRevision logs a revision of previously generated text. The prior
// text is recorded by hash only; the length ratio is a coarse signal of how
// much changed.
func (l *Logger) RecordRevision(kind model.SectionKind, originalText, revisedText, reason, ticker, fiscalYear string) Entry {
	origLen := len(originalText)
	if origLen == 0 {
		origLen = 1
	}

	return l.append(EventRevision,
		map[string]any{
			"section":         kind.String(),
			"original_hash":   hashContent(originalText),
			"revised_text":    revisedText,
			"revision_reason": reason,
		},
		ticker, fiscalYear,
		map[string]any{
			"original_length": len(originalText),
			"revised_length":  len(revisedText),
			"change_ratio":    float64(len(revisedText)) / float64(origLen),
		},
	)
}

// SavedLog is the persisted form of a session: one JSON document holding the
// full ordered entry sequence.
type SavedLog struct {
	SessionID    string  `json:"session_id"`
	CreatedAt    string  `json:"created_at"`
	TotalEntries int     `json:"total_entries"`
	Entries      []Entry `json:"entries"`
}

// Save persists the session and returns the file path. Saving is idempotent
// in content: re-saving with no new entries reproduces the same bytes. A
// write failure is surfaced, never swallowed; a broken audit trail must be
// visible.
func (l *Logger) Save() (string, error) {
	doc := SavedLog{
		SessionID:    l.sessionID,
		CreatedAt:    l.createdAt.Format(time.RFC3339Nano),
		TotalEntries: len(l.entries),
		Entries:      l.entries,
	}
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "audit: marshal log")
	}
	if err := os.WriteFile(l.logFile, b, 0o600); err != nil {
		return "", eris.Wrapf(err, "audit: write log %s", l.logFile)
	}
	return l.logFile, nil
}

// LoadLog reads a persisted session document from disk.
func LoadLog(path string) (*SavedLog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "audit: read log %s", path)
	}
	var doc SavedLog
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, eris.Wrapf(err, "audit: parse log %s", path)
	}
	return &doc, nil
}
