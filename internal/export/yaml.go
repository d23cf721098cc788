package export

import (
	"io"
	"time"

	"github.com/iksnae/docchat/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports sessions in YAML format
type YAMLExporter struct{}

type yamlMessage struct {
	ID        int64  `yaml:"id"`
	Sender    string `yaml:"sender"`
	Text      string `yaml:"text"`
	Timestamp string `yaml:"timestamp,omitempty"`
}

type yamlRecord struct {
	ID           string        `yaml:"id"`
	DocumentID   string        `yaml:"documentId"`
	Title        string        `yaml:"title"`
	Filename     string        `yaml:"filename,omitempty"`
	Updated      string        `yaml:"updated,omitempty"`
	MessageCount int           `yaml:"messageCount"`
	Messages     []yamlMessage `yaml:"messages"`
}

// Export exports a session to YAML format
func (e *YAMLExporter) Export(record *internal.SessionRecord, w io.Writer) error {
	out := yamlRecord{
		ID:           record.Session.ID,
		DocumentID:   record.Session.DocumentID,
		Title:        record.Session.FirstMessage,
		Filename:     record.Session.Filename,
		Updated:      isoTime(record.Session.Timestamp),
		MessageCount: record.Session.MessageCount,
		Messages:     make([]yamlMessage, 0, len(record.Messages)),
	}
	for _, msg := range record.Messages {
		out.Messages = append(out.Messages, yamlMessage{
			ID:        msg.ID,
			Sender:    string(msg.Sender),
			Text:      msg.Text,
			Timestamp: isoTime(msg.Timestamp),
		})
	}

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(out)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(internal.TimestampLayout)
}
