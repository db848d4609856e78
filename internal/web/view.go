package web

import (
	"errors"
	"html/template"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/dhabedank/cost-analyzer/internal/core"
	"github.com/dhabedank/cost-analyzer/internal/output"
	"github.com/dhabedank/cost-analyzer/internal/workbook"
)

// alert is a message shown at the top of the page.
type alert struct {
	Level   string // error, warning, info
	Message string
}

type sheetView struct {
	Name    string
	Columns []string
	Rows    [][]string
	Error   string
}

type pageView struct {
	Alert *alert

	FileName    string
	SheetCount  int
	Sheets      []string
	Overview    []sheetView
	Selected    *sheetView
	RawText     string
	SheetErrors []string

	State     string
	Provider  string
	Model     string
	Region    string
	MaxChars  int
	Truncated bool

	HasResult  bool
	ResultHTML template.HTML
}

func newSheetView(t *workbook.Table) sheetView {
	v := sheetView{Name: t.Sheet, Columns: t.Columns}
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.Value
		}
		v.Rows = append(v.Rows, cells)
	}
	return v
}

// buildPage collects everything the page shows for session.
func (s *Server) buildPage(session *core.Session, a *alert, selected string) *pageView {
	page := &pageView{
		Alert:    a,
		Provider: s.config.Provider,
		Model:    s.config.Analysis.Model,
		Region:   s.config.Analysis.Region,
		MaxChars: s.config.Analysis.MaxChars,
	}

	if sheets := session.Sheets(); sheets != nil {
		page.FileName = session.FileName()
		page.Sheets = sheets
		page.SheetCount = len(sheets)
		page.RawText = core.RawPreview(session.Document(), s.config.RawPreviewChars)
		page.SheetErrors = sheetErrorMessages(session.SheetErrors())

		for _, name := range sheets {
			table, err := session.Preview(name, s.config.PreviewRows)
			if err != nil {
				page.Overview = append(page.Overview, sheetView{Name: name, Error: err.Error()})
				continue
			}
			page.Overview = append(page.Overview, newSheetView(table))
		}

		if selected != "" {
			if table, err := session.Preview(selected, 0); err == nil {
				v := newSheetView(table)
				page.Selected = &v
			} else if page.Alert == nil {
				page.Alert = &alert{Level: "warning", Message: err.Error()}
			}
		}
	}

	if result, err := session.Result(); err == nil {
		html, err := output.RenderMarkdown(result.Text)
		if err != nil {
			s.log.WithError(err).Warn("result rendering failed, showing plain text")
			html = template.HTML("<pre>" + template.HTMLEscapeString(result.Text) + "</pre>")
		}
		page.HasResult = true
		page.ResultHTML = html
		page.Truncated = result.Prompt != nil && result.Prompt.Truncated
	}

	page.State = string(session.State())
	return page
}

func sheetErrorMessages(err error) []string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		msgs := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			msgs[i] = e.Error()
		}
		return msgs
	}
	return []string{err.Error()}
}

// inferenceAlert turns an analysis failure into a user-facing message.
func inferenceAlert(err error) *alert {
	var inferenceErr *core.InferenceError
	if !errors.As(err, &inferenceErr) {
		return &alert{Level: "error", Message: "Analysis failed: " + err.Error()}
	}

	var msg string
	switch inferenceErr.Kind {
	case core.KindAuth:
		msg = "The API key was rejected. Check the key and try again."
	case core.KindRateLimit:
		msg = "The provider is rate limiting requests. Wait a moment and try again."
	case core.KindTimeout:
		msg = "The analysis timed out. Try again."
	case core.KindNetwork:
		msg = "The inference service could not be reached."
	case core.KindEmptyResponse:
		msg = "The model returned an empty answer. Try again."
	default:
		msg = "Analysis failed."
	}
	return &alert{Level: "error", Message: msg + " (" + inferenceErr.Error() + ")"}
}

func (s *Server) logFields(session *core.Session) logrus.Fields {
	return logrus.Fields{
		"session": session.ID,
		"file":    session.FileName(),
	}
}
