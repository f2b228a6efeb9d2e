// Package snapshot writes the dated JSON copies of each collection run.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"inacovid/internal/domain"
	"inacovid/internal/util"
)

// Writer writes one file per label and reporting day into a directory.
type Writer struct {
	dir string
	cal *util.ReportingCalendar
}

// NewWriter creates a Writer for dir. A missing trailing separator is added
// so file names are always "{dir}{label}-{date}.json".
func NewWriter(dir string, cal *util.ReportingCalendar) *Writer {
	if dir != "" && !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	if cal == nil {
		cal = util.NewReportingCalendar(util.DefaultCutoff, nil)
	}
	return &Writer{dir: dir, cal: cal}
}

// Path returns the file Write would produce for label today.
func (w *Writer) Path(label string) string {
	return w.dir + label + "-" + w.cal.Today() + ".json"
}

// Write pretty-prints v with a two-space indent and stores that text as a
// single JSON string value, so readers must decode twice. An existing file
// for the same day is replaced.
func (w *Writer) Write(label string, v any) (string, error) {
	path := w.Path(label)

	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding %s: %w", domain.ErrSnapshot, label, err)
	}
	data, err := json.Marshal(string(pretty))
	if err != nil {
		return "", fmt.Errorf("%w: encoding %s: %w", domain.ErrSnapshot, label, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", domain.ErrSnapshot, path, err)
	}
	return path, nil
}
