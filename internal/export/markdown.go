package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/docchat/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(record *internal.SessionRecord, w io.Writer) error {
	session := record.Session

	title := session.FirstMessage
	if title == "" {
		title = session.DocumentID
	}
	if _, err := fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(title)); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "**Document:** %s  \n", session.DocumentID)
	if session.Filename != "" {
		_, _ = fmt.Fprintf(w, "**File:** %s  \n", session.Filename)
	}
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	if ts := isoTime(session.Timestamp); ts != "" {
		_, _ = fmt.Fprintf(w, "**Updated:** %s  \n", ts)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(record.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range record.Messages {
		timestamp := ""
		if ts := isoTime(msg.Timestamp); ts != "" {
			timestamp = fmt.Sprintf(" (%s)", ts)
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Sender, timestamp, escapeMarkdown(msg.Text))

		if i < len(record.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
