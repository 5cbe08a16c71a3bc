// Package registry loads the table of flair classes a user may request.
package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Entry is one permitted class and its default flair text, empty when the
// row has none.
type Entry struct {
	Class string
	Text  string
}

// Registry maps class names to entries. It is read-only once loaded.
type Registry struct {
	entries map[string]Entry
}

// Load reads a registry from a CSV file on disk.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path) // #nosec G304 - path chosen by operator
	if err != nil {
		return nil, fmt.Errorf("open class registry: %w", err)
	}
	defer f.Close()
	reg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read class registry %s: %w", path, err)
	}
	return reg, nil
}

// Parse reads headerless CSV rows. A two-field row maps the first field to
// the second; any other row maps the first field to no default text. Later
// rows overwrite earlier ones with the same class.
func Parse(r io.Reader) (*Registry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	entries := map[string]Entry{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}
		entry := Entry{Class: row[0]}
		if len(row) == 2 {
			entry.Text = row[1]
		}
		entries[entry.Class] = entry
	}
	return &Registry{entries: entries}, nil
}

// Lookup returns the entry for class and whether it is permitted.
func (r *Registry) Lookup(class string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[class]
	return e, ok
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
