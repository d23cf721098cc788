package export

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/gomarkdown/markdown"

	"github.com/iksnae/docchat/internal"
)

// HTMLExporter renders the Markdown export as a standalone HTML page
type HTMLExporter struct{}

// Export exports a session to HTML format
func (e *HTMLExporter) Export(record *internal.SessionRecord, w io.Writer) error {
	// raw HTML in messages is shown as text, not rendered
	escaped := &internal.SessionRecord{Session: record.Session, Messages: record.Messages.Clone()}
	escaped.Session.FirstMessage = html.EscapeString(escaped.Session.FirstMessage)
	for i := range escaped.Messages {
		escaped.Messages[i].Text = html.EscapeString(escaped.Messages[i].Text)
	}

	var md bytes.Buffer
	if err := (&MarkdownExporter{}).Export(escaped, &md); err != nil {
		return err
	}
	body := markdown.ToHTML(md.Bytes(), nil, nil)

	title := record.Session.FirstMessage
	if title == "" {
		title = record.Session.DocumentID
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), body)
	return err
}

// Extension returns the file extension for this format
func (e *HTMLExporter) Extension() string {
	return "html"
}
