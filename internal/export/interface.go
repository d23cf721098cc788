package export

import (
	"fmt"
	"io"

	"github.com/iksnae/docchat/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(record *internal.SessionRecord, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "html":
		return &HTMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json, html)", format)
	}
}

// Filename returns the file name a record is exported to
func Filename(record *internal.SessionRecord, e Exporter) string {
	return fmt.Sprintf("%s_%s.%s", sanitize(record.Session.DocumentID), record.Session.ID, e.Extension())
}

func sanitize(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
