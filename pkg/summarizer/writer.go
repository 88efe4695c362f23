package summarizer

import (
	"fmt"
	"io"
	"os"

	"github.com/user/ainspire/pkg/ports"
)

// StdoutPath makes Writer print the report instead of saving it.
const StdoutPath = "-"

// Formatter renders a run summary as text.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function act as a Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// Writer renders summaries and stores them through a FileSystem.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
	stdout    io.Writer
}

// NewWriter creates a Writer.
func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{formatter: formatter, fs: fs, stdout: os.Stdout}
}

// Write renders summary to path, or to standard output when path is
// StdoutPath.
func (w *Writer) Write(path string, summary *Summary) error {
	content := w.formatter.Format(summary)
	if path == StdoutPath {
		if _, err := io.WriteString(w.stdout, content); err != nil {
			return fmt.Errorf("print summary: %w", err)
		}
		return nil
	}
	if err := w.fs.WriteFile(path, []byte(content)); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}
