package output

import (
	"io"
)

// TextAdapter writes the model output exactly as received.
type TextAdapter struct{}

func (a *TextAdapter) Name() string        { return "text" }
func (a *TextAdapter) FileName() string    { return TextFileName }
func (a *TextAdapter) ContentType() string { return TextMIME }

func (a *TextAdapter) Write(w io.Writer, report *Report) error {
	_, err := io.WriteString(w, report.Analysis)
	return err
}
