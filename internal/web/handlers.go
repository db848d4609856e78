package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dhabedank/cost-analyzer/internal/core"
	"github.com/dhabedank/cost-analyzer/internal/output"
	"github.com/dhabedank/cost-analyzer/internal/workbook"
)

// IndexAction renders the page for the current session.
func (s *Server) IndexAction(c *gin.Context) {
	s.render(c, http.StatusOK, s.buildPage(sessionFrom(c), nil, ""))
}

// PreviewAction renders the page with one sheet shown in full.
func (s *Server) PreviewAction(c *gin.Context) {
	session := sessionFrom(c)
	if session.Sheets() == nil {
		s.render(c, http.StatusBadRequest, s.buildPage(session, &alert{Level: "warning", Message: core.ErrNoWorkbook.Error()}, ""))
		return
	}
	s.render(c, http.StatusOK, s.buildPage(session, nil, c.Query("sheet")))
}

// UploadAction loads the posted spreadsheet into the session.
func (s *Server) UploadAction(c *gin.Context) {
	session := sessionFrom(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)

	name, data, err := readUpload(c)
	if err != nil {
		s.log.WithFields(s.logFields(session)).WithError(err).Warn("upload rejected")
		s.render(c, http.StatusBadRequest, s.buildPage(session, &alert{Level: "error", Message: err.Error()}, ""))
		return
	}

	if err := session.Load(name, data); err != nil {
		var formatErr *workbook.FileFormatError
		status := http.StatusInternalServerError
		if errors.As(err, &formatErr) {
			status = http.StatusUnprocessableEntity
		}
		s.log.WithFields(s.logFields(session)).WithField("upload", name).WithError(err).Warn("workbook rejected")
		s.render(c, status, s.buildPage(session, &alert{Level: "error", Message: err.Error()}, ""))
		return
	}

	fields := s.logFields(session)
	fields["sheets"] = len(session.Sheets())
	fields["chars"] = len(session.Document())
	entry := s.log.WithFields(fields)
	if sheetErr := session.SheetErrors(); sheetErr != nil {
		entry = entry.WithField("skipped", sheetErr.Error())
	}
	entry.Info("workbook loaded")

	s.render(c, http.StatusOK, s.buildPage(session, &alert{
		Level:   "info",
		Message: fmt.Sprintf("Loaded %s with %d sheet(s).", name, len(session.Sheets())),
	}, ""))
}

func readUpload(c *gin.Context) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, fmt.Errorf("the file is larger than %d MB", maxErr.Limit>>20)
		}
		return "", nil, errors.New("choose a spreadsheet file to upload")
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return fh.Filename, data, nil
}

// AnalyzeAction runs the analysis with the key posted in the form. The key
// is passed through to the inference call and is not kept or logged.
func (s *Server) AnalyzeAction(c *gin.Context) {
	session := sessionFrom(c)
	start := time.Now()

	analysis, err := session.Analyze(c.Request.Context(), c.PostForm("api_key"))
	entry := s.log.WithFields(s.logFields(session)).WithField("elapsed", time.Since(start).String())

	switch {
	case errors.Is(err, core.ErrNoWorkbook):
		s.render(c, http.StatusBadRequest, s.buildPage(session, &alert{Level: "warning", Message: "Upload a spreadsheet before running the analysis."}, ""))
		return
	case errors.Is(err, core.ErrMissingCredential):
		s.render(c, http.StatusBadRequest, s.buildPage(session, &alert{Level: "warning", Message: "Enter your API key to run the analysis."}, ""))
		return
	case err != nil:
		var inferenceErr *core.InferenceError
		if errors.As(err, &inferenceErr) {
			entry = entry.WithField("kind", inferenceErr.Kind).WithField("upstream_status", inferenceErr.StatusCode)
		}
		entry.WithError(err).Error("analysis failed")
		s.render(c, http.StatusBadGateway, s.buildPage(session, inferenceAlert(err), ""))
		return
	}

	entry.WithField("provider", analysis.Provider).
		WithField("truncated", analysis.Prompt.Truncated).
		WithField("prompt_chars", analysis.Prompt.Chars()).
		Info("analysis complete")

	s.render(c, http.StatusOK, s.buildPage(session, &alert{Level: "info", Message: "Analysis complete."}, ""))
}

// DownloadAction sends the last result as a file attachment.
func (s *Server) DownloadAction(c *gin.Context) {
	session := sessionFrom(c)

	result, err := session.Result()
	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}

	adapter, err := output.NewAdapter(c.DefaultQuery("format", "text"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	report := output.NewReport(session.FileName(), session.Sheets(), s.config.Analysis, result)
	if err := adapter.Write(&buf, report); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", adapter.FileName()))
	c.Data(http.StatusOK, adapter.ContentType(), buf.Bytes())
}

func (s *Server) render(c *gin.Context, status int, page *pageView) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, page); err != nil {
		s.log.WithError(err).Error("page rendering failed")
		c.String(http.StatusInternalServerError, "page rendering failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
