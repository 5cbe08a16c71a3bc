// Package journal appends one line per processed flair request to a text file.
package journal

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Writer appends entries to Path. The file is opened and closed for every
// entry, so concurrent readers always see whole lines.
type Writer struct {
	Path  string
	Clock func() time.Time
}

func New(path string) *Writer {
	return &Writer{Path: path, Clock: time.Now}
}

// Success records an applied flair. The text segment is omitted when empty.
func (w *Writer) Success(user, text, class string) error {
	var b strings.Builder
	b.WriteString("user: ")
	b.WriteString(user)
	b.WriteString(" | class(es): ")
	b.WriteString(class)
	if text != "" {
		b.WriteString(" | text: ")
		b.WriteString(text)
	}
	return w.append(b.String())
}

// Failure records a rejected request.
func (w *Writer) Failure(user string) error {
	return w.append("user: " + user + " | failed to process")
}

func (w *Writer) append(line string) error {
	clock := w.Clock
	if clock == nil {
		clock = time.Now
	}
	line = fmt.Sprintf("%s @ %s\n", line, clock().UTC().Format(timeLayout))

	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G302 G304 - operator log file
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	return nil
}
