package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/api"
)

var askCmd = &cobra.Command{
	Use:   "ask <document-id> <question...>",
	Short: "Ask one question about a document",
	Long: `Ask a single question about a document. The question and the answer are
appended to the document's saved conversation.`,
	Args: cobra.MinimumNArgs(2),
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

		documentID := args[0]
		question := strings.Join(args[1:], " ")
		conv := internal.NewConversation(store, client)
		if _, err := conv.Switch(documentID); warnRecovered(err) != nil {
			return err
		}
		lookupFilename(cmd.Context(), client, store, documentID)

		reply, err := askWithProgress(cmd.Context(), conv, documentID, question)
		if err := reportAskError(err); err != nil {
			return err
		}
		printMessage(cmd.OutOrStdout(), reply)
		return nil
	},
}

func askWithProgress(ctx context.Context, conv *internal.Conversation, documentID, question string) (internal.ChatMessage, error) {
	var reply internal.ChatMessage
	var askErr error
	_ = internal.ShowProgress(ctx, "Thinking...", func(ctx context.Context) error {
		reply, askErr = conv.Ask(ctx, documentID, question)
		return askErr
	})
	return reply, askErr
}

// reportAskError keeps network failures non-fatal, the fallback reply is shown instead
func reportAskError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, internal.ErrNetworkFailure) {
		internal.LogWarn("Backend call failed: %v", err)
		return nil
	}
	return err
}

// lookupFilename caches the document's display name for session titles
func lookupFilename(ctx context.Context, client *api.Client, store *internal.ChatSessionStore, documentID string) {
	docs, err := client.ListDocuments(ctx)
	if err != nil {
		internal.LogDebug("Could not look up document names: %v", err)
		return
	}
	if doc, ok := api.FindDocument(docs, documentID); ok {
		title := doc.Filename
		if title == "" {
			title = doc.Name
		}
		if title != "" {
			store.SetFilename(documentID, title)
		}
	}
}

func printMessage(w io.Writer, msg internal.ChatMessage) {
	who := botStyle.Render("Assistant")
	if msg.Sender == internal.SenderUser {
		who = userStyle.Render("You")
	}
	stamp := ""
	if !msg.Timestamp.IsZero() {
		stamp = dateStyle.Render("["+msg.Timestamp.Local().Format("15:04")+"]") + " "
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", stamp, who, msg.Text)
}

func printTranscript(w io.Writer, transcript internal.Transcript) {
	if len(transcript) == 0 {
		_, _ = fmt.Fprintln(w, dateStyle.Render("(no messages)"))
		return
	}
	for _, msg := range transcript {
		printMessage(w, msg)
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
}
