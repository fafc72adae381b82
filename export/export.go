// Package export serializes normalized records into flat tabular and tree
// file formats.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when constructing an exporter with
	// a format outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrNilRecord is returned when the record list contains a nil entry.
	ErrNilRecord = errors.New("record must not be nil")
)

// Formats lists the supported export formats.
var Formats = []string{"json", "jsonl", "csv", "html", "xml", "excel"}

// Exporter writes a record set to a single destination file in one of the
// supported formats. The format is validated at construction so a
// misconfigured run fails before any search work happens.
type Exporter struct {
	path   string
	format string
}

// NewExporter validates the format and binds the destination path.
func NewExporter(path, format string) (*Exporter, error) {
	format = strings.ToLower(format)
	supported := false
	for _, f := range Formats {
		if f == format {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if path == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}

	return &Exporter{path: path, format: format}, nil
}

// Export writes all records in a single pass. Records are validated up
// front; nothing is written when validation fails. Destination I/O errors
// propagate to the caller.
func (e *Exporter) Export(records []map[string]any) error {
	for i, record := range records {
		if record == nil {
			return fmt.Errorf("%w (index %d)", ErrNilRecord, i)
		}
	}

	if err := ensureDir(e.path); err != nil {
		return err
	}

	slog.Info("exporting records",
		slog.Int("count", len(records)),
		slog.String("format", e.format),
		slog.String("path", e.path),
	)

	switch e.format {
	case "json":
		return e.writeJSON(records)
	case "jsonl":
		return e.writeJSONL(records)
	case "csv":
		return e.writeCSV(records)
	case "html":
		return e.writeHTML(records)
	case "xml":
		return e.writeXML(records)
	case "excel":
		return e.writeExcel(records)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, e.format)
	}
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// cellString renders a flattened value for tabular cells. Nulls render as
// empty cells.
func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
