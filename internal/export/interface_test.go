package export

import (
	"testing"

	"github.com/iksnae/docchat/internal"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantType string
		wantExt  string
		wantErr  bool
	}{
		{name: "jsonl format", format: "jsonl", wantType: "JSONLExporter", wantExt: "jsonl"},
		{name: "markdown format", format: "md", wantType: "MarkdownExporter", wantExt: "md"},
		{name: "markdown format long", format: "markdown", wantType: "MarkdownExporter", wantExt: "md"},
		{name: "yaml format", format: "yaml", wantType: "YAMLExporter", wantExt: "yaml"},
		{name: "json format", format: "json", wantType: "JSONExporter", wantExt: "json"},
		{name: "html format", format: "html", wantType: "HTMLExporter", wantExt: "html"},
		{name: "unsupported format", format: "pdf", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			var typeName string
			switch got.(type) {
			case *JSONLExporter:
				typeName = "JSONLExporter"
			case *MarkdownExporter:
				typeName = "MarkdownExporter"
			case *YAMLExporter:
				typeName = "YAMLExporter"
			case *JSONExporter:
				typeName = "JSONExporter"
			case *HTMLExporter:
				typeName = "HTMLExporter"
			}
			if typeName != tt.wantType {
				t.Errorf("NewExporter() type = %s, want %s", typeName, tt.wantType)
			}
			if got.Extension() != tt.wantExt {
				t.Errorf("Extension() = %s, want %s", got.Extension(), tt.wantExt)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	record := internal.CreateTestRecord("1710495045123", "doc/1 ..", "hi")
	got := Filename(record, &JSONExporter{})
	if got != "doc_1____1710495045123.json" {
		t.Errorf("Filename() = %q", got)
	}
}
