package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dhabedank/cost-analyzer/internal/workbook"
)

// State is the position of a session in the analysis pipeline.
type State string

const (
	StateNoFile          State = "no_file"
	StateFileLoaded      State = "file_loaded"
	StatePreviewShown    State = "preview_shown"
	StateAwaitingTrigger State = "awaiting_credential_and_trigger"
	StateAnalyzing       State = "analyzing"
	StateResultReady     State = "result_ready"
	StateAnalysisFailed  State = "analysis_failed"
)

// CanAnalyze reports whether an analysis may be triggered from s.
func (s State) CanAnalyze() bool {
	switch s {
	case StateFileLoaded, StatePreviewShown, StateAwaitingTrigger, StateResultReady, StateAnalysisFailed:
		return true
	}
	return false
}

// Session is the per-user pipeline context: the uploaded workbook, its
// flattened text and the last analysis result. Sessions share nothing.
//
// Methods are safe for concurrent use; Analyze holds the session for the
// whole inference call, so a second request on the same session waits.
type Session struct {
	ID string

	mu            sync.Mutex
	config        AnalysisConfig
	newInferencer InferencerFactory

	state       State
	fileName    string
	workbook    workbook.Workbook
	document    string
	sheetErrors error
	result      *Analysis
	lastErr     error
	updated     time.Time
}

// NewSession creates an empty session.
func NewSession(id string, cfg AnalysisConfig, factory InferencerFactory) *Session {
	return &Session{
		ID:            id,
		config:        cfg,
		newInferencer: factory,
		state:         StateNoFile,
		updated:       time.Now(),
	}
}

// Load replaces the session's workbook with the uploaded file and flattens it.
//
// A *workbook.FileFormatError puts the session back to StateNoFile. Sheets
// that fail to read do not fail the load; they are reported by SheetErrors.
// The previous analysis result is kept until the next analysis replaces it.
func (s *Session) Load(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	s.closeWorkbook()

	wb, err := workbook.Open(name, data)
	if err != nil {
		s.state = StateNoFile
		s.lastErr = err
		return err
	}

	doc, sheetErrs := Flatten(wb, s.readOptions())

	s.workbook = wb
	s.fileName = name
	s.document = doc
	s.sheetErrors = sheetErrs
	s.lastErr = nil

	// FileLoaded is transient: nothing else is needed before the trigger.
	s.state = StateAwaitingTrigger
	return nil
}

// Preview reads the head of one sheet (maxRows <= 0 reads all of it).
func (s *Session) Preview(sheet string, maxRows int) (*workbook.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workbook == nil {
		return nil, ErrNoWorkbook
	}
	s.touch()

	opts := s.readOptions()
	opts.MaxRows = maxRows
	table, err := s.workbook.ReadSheet(sheet, opts)
	if err != nil {
		return nil, err
	}
	if s.state == StateAwaitingTrigger {
		s.state = StatePreviewShown
	}
	return table, nil
}

// Analyze runs the analysis on the loaded workbook with credential.
//
// An empty credential returns ErrMissingCredential without building or
// calling an inferencer. On failure the previous result is kept and the
// session can be triggered again without a new upload.
func (s *Session) Analyze(ctx context.Context, credential string) (*Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if s.workbook == nil || !s.state.CanAnalyze() {
		return nil, ErrNoWorkbook
	}
	if strings.TrimSpace(credential) == "" {
		s.state = StateAwaitingTrigger
		return nil, ErrMissingCredential
	}
	s.state = StateAnalyzing

	inf, err := s.newInferencer(credential)
	if err != nil {
		return nil, s.fail(asInferenceError("inference", err))
	}

	analysis, err := Analyze(ctx, inf, s.document, s.config)
	if err != nil {
		return nil, s.fail(err)
	}

	s.result = analysis
	s.lastErr = nil
	s.state = StateResultReady
	return analysis, nil
}

func (s *Session) fail(err error) error {
	s.lastErr = err
	s.state = StateAnalysisFailed
	return err
}

// State returns the current pipeline state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FileName returns the name of the loaded file.
func (s *Session) FileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileName
}

// Sheets lists the sheets of the loaded workbook.
func (s *Session) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workbook == nil {
		return nil
	}
	return s.workbook.SheetNames()
}

// Document returns the flattened text of the loaded workbook.
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// SheetErrors returns the aggregated errors of sheets skipped while flattening.
func (s *Session) SheetErrors() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheetErrors
}

// Result returns the last successful analysis.
func (s *Session) Result() (*Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, ErrNoResult
	}
	return s.result, nil
}

// LastError returns the error of the last failed step, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Updated returns when the session was last used.
func (s *Session) Updated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated
}

// Close releases the workbook held by the session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeWorkbook()
}

func (s *Session) closeWorkbook() error {
	if s.workbook == nil {
		return nil
	}
	err := s.workbook.Close()
	s.workbook = nil
	s.fileName = ""
	s.document = ""
	s.sheetErrors = nil
	return err
}

func (s *Session) readOptions() workbook.ReadOptions {
	return workbook.ReadOptions{NoHeader: s.config.NoHeader}
}

func (s *Session) touch() {
	s.updated = time.Now()
}
