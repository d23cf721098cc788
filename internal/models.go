package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// Keys used in the key-value store
const (
	IndexKey            = "allChatSessions"
	HistoryKey          = "chatHistory"
	transcriptKeyPrefix = "chatSession_"
)

// TimestampLayout is the ISO-8601 form used for every persisted instant
// (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TranscriptKey returns the store key holding a session's messages
func TranscriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}

// Sender identifies who authored a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is a known sender
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// ChatMessage is a single entry of a transcript
type ChatMessage struct {
	ID         int64
	Text       string
	Sender     Sender
	Timestamp  time.Time
	DocumentID string
}

type chatMessageJSON struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	Sender     Sender `json:"sender"`
	Timestamp  string `json:"timestamp"`
	DocumentID string `json:"documentId,omitempty"`
}

// MarshalJSON encodes the timestamp as an ISO-8601 string
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(chatMessageJSON{
		ID:         m.ID,
		Text:       m.Text,
		Sender:     m.Sender,
		Timestamp:  formatTimestamp(m.Timestamp),
		DocumentID: m.DocumentID,
	})
}

// UnmarshalJSON parses the ISO-8601 timestamp back into an instant
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var raw chatMessageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Sender.Valid() {
		return fmt.Errorf("unknown sender %q", raw.Sender)
	}
	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	*m = ChatMessage{
		ID:         raw.ID,
		Text:       raw.Text,
		Sender:     raw.Sender,
		Timestamp:  ts,
		DocumentID: raw.DocumentID,
	}
	return nil
}

// Transcript is the ordered message list of one session
type Transcript []ChatMessage

// Clone returns an independent copy
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// FirstUserText returns the text of the first user-authored message
func (t Transcript) FirstUserText() string {
	for _, msg := range t {
		if msg.Sender == SenderUser && msg.Text != "" {
			return msg.Text
		}
	}
	return ""
}

// ChatSession is an entry of the session index
type ChatSession struct {
	ID           string
	DocumentID   string
	FirstMessage string
	Timestamp    time.Time
	MessageCount int
	Filename     string
}

type chatSessionJSON struct {
	ID           string `json:"id"`
	DocumentID   string `json:"documentId"`
	FirstMessage string `json:"firstMessage"`
	Timestamp    string `json:"timestamp"`
	MessageCount int    `json:"messageCount"`
	Filename     string `json:"filename,omitempty"`
}

// MarshalJSON encodes the timestamp as an ISO-8601 string
func (s ChatSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(chatSessionJSON{
		ID:           s.ID,
		DocumentID:   s.DocumentID,
		FirstMessage: s.FirstMessage,
		Timestamp:    formatTimestamp(s.Timestamp),
		MessageCount: s.MessageCount,
		Filename:     s.Filename,
	})
}

// UnmarshalJSON parses the ISO-8601 timestamp back into an instant
func (s *ChatSession) UnmarshalJSON(data []byte) error {
	var raw chatSessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" || raw.DocumentID == "" {
		return fmt.Errorf("session entry missing id or documentId")
	}
	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	*s = ChatSession{
		ID:           raw.ID,
		DocumentID:   raw.DocumentID,
		FirstMessage: raw.FirstMessage,
		Timestamp:    ts,
		MessageCount: raw.MessageCount,
		Filename:     raw.Filename,
	}
	return nil
}

// SessionRecord pairs an index entry with its transcript
type SessionRecord struct {
	Session  ChatSession `json:"session" yaml:"session"`
	Messages Transcript  `json:"messages" yaml:"-"`
}

// ParseTranscript decodes a transcript value stored under key
func ParseTranscript(key, value string) (Transcript, error) {
	var t Transcript
	if err := json.Unmarshal([]byte(value), &t); err != nil {
		return nil, &ParseError{Source: "transcript", Key: key, Err: err}
	}
	return t, nil
}

// ParseSessionIndex decodes the session index value
func ParseSessionIndex(value string) ([]ChatSession, error) {
	var sessions []ChatSession
	if err := json.Unmarshal([]byte(value), &sessions); err != nil {
		return nil, &ParseError{Source: "index", Key: IndexKey, Err: err}
	}
	return sessions, nil
}

func encodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
