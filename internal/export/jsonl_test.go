package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/docchat/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name      string
		record    *internal.SessionRecord
		wantLines int
		want      []string
	}{
		{
			name:      "empty session",
			record:    internal.CreateTestRecord("s1", "doc1"),
			wantLines: 0,
		},
		{
			name:      "question and answer",
			record:    internal.CreateTestRecord("s2", "doc1", "What is X?", "X is a variable."),
			wantLines: 2,
			want: []string{
				`"sender":"user"`,
				`"sender":"bot"`,
				`"text":"What is X?"`,
				`"timestamp":"2024-03-15T09:30:45.000Z"`,
				`"documentId":"doc1"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&JSONLExporter{}).Export(tt.record, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			output := buf.String()
			lines := strings.Split(strings.TrimSpace(output), "\n")
			if output == "" {
				lines = nil
			}
			if len(lines) != tt.wantLines {
				t.Errorf("Export() produced %d lines, want %d", len(lines), tt.wantLines)
			}
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("Export() output missing %s\n%s", want, output)
				}
			}
		})
	}
}

func TestJSONLExporter_LinesParseBack(t *testing.T) {
	record := internal.CreateTestRecord("s1", "doc1", "What is X?", "X is a variable.")
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(record, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	value := "[" + strings.Join(lines, ",") + "]"
	transcript, err := internal.ParseTranscript("export", value)
	if err != nil {
		t.Fatalf("ParseTranscript() error = %v", err)
	}
	for i := range transcript {
		if !transcript[i].Timestamp.Equal(record.Messages[i].Timestamp) {
			t.Errorf("message %d timestamp = %v, want %v", i, transcript[i].Timestamp, record.Messages[i].Timestamp)
		}
	}
}
