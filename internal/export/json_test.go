package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/docchat/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	record := internal.CreateTestRecord("1710495045123", "doc1", "What is X?", "X is a variable.")

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(record, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded internal.SessionRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not a session record: %v\n%s", err, buf.String())
	}
	if decoded.Session.ID != "1710495045123" || decoded.Session.DocumentID != "doc1" {
		t.Errorf("session = %+v", decoded.Session)
	}
	if len(decoded.Messages) != 2 || decoded.Messages[1].Sender != internal.SenderBot {
		t.Errorf("messages = %+v", decoded.Messages)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"session\"")) {
		t.Errorf("output should be indented:\n%s", buf.String())
	}
}
