package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iksnae/docchat/internal"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved conversations",
	Long: `List, show, delete and clear the conversations saved in the local store.
Each document has at most one conversation.`,
}

var sessionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved conversations, most recent first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		sessions, err := store.ListSessions()
		if err := warnRecovered(err); err != nil {
			return err
		}
		displaySessions(cmd.OutOrStdout(), sessions)
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Show the saved conversation of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		sessions, err := store.ListSessions()
		if err := warnRecovered(err); err != nil {
			return err
		}
		session, ok := findSessionForDocument(sessions, args[0])
		if !ok {
			return fmt.Errorf("no saved conversation for document %s", args[0])
		}

		transcript, err := store.ResumeSession(session)
		if err := warnRecovered(err); err != nil {
			return err
		}
		if transcript == nil {
			return fmt.Errorf("conversation %s could not be read and was discarded", session.ID)
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, headerStyle.Render("💬 "+sessionTitle(session)))
		_, _ = fmt.Fprintln(out, idStyle.Render(fmt.Sprintf("Session %s · document %s", session.ID, session.DocumentID)))
		_, _ = fmt.Fprintln(out)
		printTranscript(out, transcript)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved conversation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		sessions, err := store.ListSessions()
		if err := warnRecovered(err); err != nil {
			return err
		}
		documentID := ""
		for _, session := range sessions {
			if session.ID == args[0] {
				documentID = session.DocumentID
				break
			}
		}
		if documentID == "" {
			return fmt.Errorf("%w: %s", internal.ErrSessionNotFound, args[0])
		}

		if err := store.DeleteSession(args[0], documentID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✅ Deleted session "+args[0]))
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear <document-id>",
	Short: "Clear the conversation of a document and start over",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		documentID := args[0]
		if _, err := store.OpenSession(documentID); warnRecovered(err) != nil {
			return err
		}
		sessionID := store.SessionID(documentID)
		if sessionID == "" {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("Nothing to clear for document "+documentID))
			return nil
		}

		transcript, err := store.ClearCurrentSession(documentID, sessionID)
		if err != nil {
			return fmt.Errorf("failed to clear conversation: %w", err)
		}
		printTranscript(cmd.OutOrStdout(), transcript)
		return nil
	},
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove saved transcripts no session refers to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		removed, err := store.PruneOrphans()
		if err != nil {
			return fmt.Errorf("failed to prune: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Removed %d orphaned transcript(s)", removed)))
		return nil
	},
}

func displaySessions(w io.Writer, sessions []internal.ChatSession) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("💬 No saved conversations"))
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("💬 Found %d conversation(s)", len(sessions))))
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("Session")+"\t"+titleStyle.Render("Document")+"\t"+
		titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Last Active")+"\t")
	_, _ = fmt.Fprintln(tw, strings.Repeat("─", 100))

	now := time.Now()
	for _, session := range sessions {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(session.ID),
			idStyle.Render(session.DocumentID),
			truncate(sessionTitle(session), 40),
			countStyle.Render(fmt.Sprintf("%d", session.MessageCount)),
			dateStyle.Render(formatWhen(session.Timestamp, now)),
		)
	}
	_ = tw.Flush()
}

func sessionTitle(session internal.ChatSession) string {
	switch {
	case session.Filename != "":
		return session.Filename
	case session.FirstMessage != "":
		return session.FirstMessage
	default:
		return internal.DefaultTitle
	}
}

func findSessionForDocument(sessions []internal.ChatSession, documentID string) (internal.ChatSession, bool) {
	for _, session := range sessions {
		if session.DocumentID == documentID {
			return session, true
		}
	}
	return internal.ChatSession{}, false
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd, sessionsClearCmd, sessionsPruneCmd)
}
