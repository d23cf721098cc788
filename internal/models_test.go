package internal

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/docchat/testutil"
)

func TestTranscriptKey(t *testing.T) {
	if got := TranscriptKey("1700000000000"); got != "chatSession_1700000000000" {
		t.Errorf("TranscriptKey() = %q", got)
	}
}

func TestChatMessage_TimestampRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 45, 123000000, time.FixedZone("CET", 3600))
	msg := ChatMessage{
		ID:         ts.UnixMilli(),
		Text:       "What is X?",
		Sender:     SenderUser,
		Timestamp:  ts,
		DocumentID: "doc1",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"timestamp":"2024-03-15T09:30:45.123Z"`) {
		t.Errorf("timestamp should be stored as UTC ISO-8601, got %s", data)
	}

	var decoded ChatMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.ID != msg.ID || decoded.Text != msg.Text || decoded.Sender != msg.Sender || decoded.DocumentID != msg.DocumentID {
		t.Errorf("decoded = %+v, want %+v", decoded, msg)
	}
}

func TestChatSession_TimestampRoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	session := ChatSession{
		ID:           "1704067200000",
		DocumentID:   "doc1",
		FirstMessage: "report.pdf",
		Timestamp:    ts,
		MessageCount: 3,
		Filename:     "report.pdf",
	}

	data, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"timestamp":"2024-01-01T00:00:00.000Z"`) {
		t.Errorf("unexpected encoding: %s", data)
	}

	var decoded ChatSession
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.Timestamp.Equal(session.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, session.Timestamp)
	}
	decoded.Timestamp = session.Timestamp
	if decoded != session {
		t.Errorf("decoded = %+v, want %+v", decoded, session)
	}
}

func TestParseTranscript(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantLen int
		wantErr bool
	}{
		{
			name:    "valid transcript",
			value:   `[{"id":1,"text":"hi","sender":"bot","timestamp":"2024-01-01T00:00:00.000Z","documentId":"doc1"}]`,
			wantLen: 1,
		},
		{
			name:    "browser Date encoding",
			value:   `[{"id":1,"text":"hi","sender":"user","timestamp":"2024-01-01T00:00:00Z","documentId":"doc1"}]`,
			wantLen: 1,
		},
		{
			name:    "empty array",
			value:   `[]`,
			wantLen: 0,
		},
		{
			name:    "malformed JSON",
			value:   `[{"id":1,`,
			wantErr: true,
		},
		{
			name:    "unknown sender",
			value:   `[{"id":1,"text":"hi","sender":"system","timestamp":"2024-01-01T00:00:00Z"}]`,
			wantErr: true,
		},
		{
			name:    "bad timestamp",
			value:   `[{"id":1,"text":"hi","sender":"bot","timestamp":"yesterday"}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTranscript("chatSession_abc", tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTranscript() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrCorruptState) {
					t.Errorf("error %v should match ErrCorruptState", err)
				}
				return
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestParseSessionIndex(t *testing.T) {
	valid := `[{"id":"2","documentId":"docB","firstMessage":"b","timestamp":"2024-01-02T00:00:00.000Z","messageCount":2},` +
		`{"id":"1","documentId":"docA","firstMessage":"a","timestamp":"2024-01-01T00:00:00.000Z","messageCount":1,"filename":"a.pdf"}]`

	sessions, err := ParseSessionIndex(valid)
	if err != nil {
		t.Fatalf("ParseSessionIndex() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len = %d, want 2", len(sessions))
	}
	if sessions[0].DocumentID != "docB" || sessions[1].Filename != "a.pdf" {
		t.Errorf("order or fields not preserved: %+v", sessions)
	}

	for _, bad := range []string{`{`, `[{"id":"","documentId":"x","timestamp":""}]`, `"nope"`} {
		if _, err := ParseSessionIndex(bad); !errors.Is(err, ErrCorruptState) {
			t.Errorf("ParseSessionIndex(%q) error = %v, want ErrCorruptState", bad, err)
		}
	}
}

func TestTranscript_FirstUserText(t *testing.T) {
	tr := Transcript{
		{Sender: SenderBot, Text: "welcome"},
		{Sender: SenderUser, Text: "first question"},
		{Sender: SenderUser, Text: "second question"},
	}
	if got := tr.FirstUserText(); got != "first question" {
		t.Errorf("FirstUserText() = %q", got)
	}
	if got := (Transcript{{Sender: SenderBot, Text: "welcome"}}).FirstUserText(); got != "" {
		t.Errorf("FirstUserText() on bot-only transcript = %q, want empty", got)
	}
}

func TestTranscript_Clone(t *testing.T) {
	orig := Transcript{{ID: 1, Text: "a"}}
	clone := orig.Clone()
	clone[0].Text = "b"
	if orig[0].Text != "a" {
		t.Error("Clone() should not share backing storage")
	}
	if Transcript(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestPersistedLayoutIsStable(t *testing.T) {
	tests := []struct {
		name  string
		value string
		into  func() interface{}
	}{
		{name: "index", value: testutil.SampleIndexJSON, into: func() interface{} { return &[]ChatSession{} }},
		{name: "transcript", value: testutil.SampleTranscriptDoc1JSON, into: func() interface{} { return &Transcript{} }},
		{name: "history", value: testutil.SampleHistoryJSON, into: func() interface{} { return &Transcript{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.into()
			testutil.JSONUnmarshal(t, []byte(tt.value), v)
			if got := string(testutil.JSONMarshal(t, v)); got != tt.value {
				t.Errorf("re-encoded value differs\n got: %s\nwant: %s", got, tt.value)
			}
		})
	}
}
