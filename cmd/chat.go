package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/api"
)

const chatHelp = `Commands:
  /history          show this document's conversation
  /clear            delete this document's conversation
  /switch <doc-id>  continue with another document
  /summary          summarize the current document
  /sessions         list saved conversations
  /help             show this help
  /quit             leave the chat`

var chatCmd = &cobra.Command{
	Use:   "chat <document-id>",
	Short: "Chat interactively about a document",
	Long: `Start an interactive conversation about a document. Every question and
answer is saved, so running chat again for the same document resumes it.

` + chatHelp,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		client, err := newClient()
		if err != nil {
			return err
		}

		s := &chatSession{
			out:    cmd.OutOrStdout(),
			store:  store,
			client: client,
			conv:   internal.NewConversation(store, client),
		}
		if err := s.switchTo(cmd, args[0]); err != nil {
			return err
		}
		return s.run(cmd, cmd.InOrStdin())
	},
}

type chatSession struct {
	out    io.Writer
	store  *internal.ChatSessionStore
	client *api.Client
	conv   *internal.Conversation
}

func (s *chatSession) run(cmd *cobra.Command, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(s.out, userStyle.Render("> "))
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(s.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			active := s.conv.Active()
			reply, err := askWithProgress(cmd.Context(), s.conv, active, line)
			if err := reportAskError(err); err != nil {
				internal.PrintError(err.Error())
				continue
			}
			printMessage(s.out, reply)
			continue
		}

		command, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch command {
		case "/quit", "/exit":
			return nil
		case "/help":
			_, _ = fmt.Fprintln(s.out, chatHelp)
		case "/history":
			printTranscript(s.out, s.store.Transcript(s.conv.Active()))
		case "/clear":
			active := s.conv.Active()
			transcript, err := s.store.ClearCurrentSession(active, s.store.SessionID(active))
			if err != nil {
				internal.PrintError(fmt.Sprintf("Failed to clear conversation: %v", err))
				continue
			}
			printTranscript(s.out, transcript)
		case "/switch":
			if arg == "" {
				internal.PrintWarning("Usage: /switch <document-id>")
				continue
			}
			if err := s.switchTo(cmd, arg); err != nil {
				internal.PrintError(err.Error())
			}
		case "/summary":
			summary, err := s.client.Summarize(cmd.Context(), s.conv.Active(), false)
			if err != nil {
				internal.LogWarn("Summary failed: %v", err)
				summary = api.SummaryErrorText
			}
			_, _ = fmt.Fprintln(s.out, summary)
		case "/sessions":
			sessions, err := s.store.ListSessions()
			if warnRecovered(err) != nil {
				internal.PrintError(err.Error())
				continue
			}
			displaySessions(s.out, sessions)
		default:
			internal.PrintWarning(fmt.Sprintf("Unknown command %s, try /help", command))
		}
	}
}

func (s *chatSession) switchTo(cmd *cobra.Command, documentID string) error {
	transcript, err := s.conv.Switch(documentID)
	if err := warnRecovered(err); err != nil {
		return err
	}
	lookupFilename(cmd.Context(), s.client, s.store, documentID)

	_, _ = fmt.Fprintln(s.out, headerStyle.Render("💬 Document "+documentID))
	printTranscript(s.out, transcript)
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
