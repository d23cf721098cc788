package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/api"
)

var (
	documentsSearch string
	documentsWatch  bool
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs", "list"},
	Short:   "List uploaded documents",
	Long: `List the documents known to the backend.

Use --search to filter by name (case-insensitive) and --watch to refresh the
list on the configured poll interval until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if !documentsWatch {
			docs, err := client.ListDocuments(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load documents: %w", err)
			}
			displayDocuments(out, api.FilterDocuments(docs, documentsSearch), documentsSearch)
			return nil
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		poller := internal.NewPoller(appConfig.Poll.Interval, func(ctx context.Context) {
			docs, err := client.ListDocuments(ctx)
			if err != nil {
				if ctx.Err() == nil {
					internal.PrintWarning(fmt.Sprintf("Failed to load documents: %v", err))
				}
				return
			}
			_, _ = fmt.Fprintf(out, "\n%s\n", dateStyle.Render("Refreshed "+time.Now().Format("15:04:05")))
			displayDocuments(out, api.FilterDocuments(docs, documentsSearch), documentsSearch)
		})
		poller.Run(ctx)
		return nil
	},
}

func displayDocuments(w io.Writer, docs []api.Document, search string) {
	if len(docs) == 0 {
		if search != "" {
			_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📄 No documents match %q", search)))
		} else {
			_, _ = fmt.Fprintln(w, headerStyle.Render("📄 No documents found"))
		}
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📄 Found %d document(s)", len(docs))))
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Uploaded")+"\t")
	_, _ = fmt.Fprintln(tw, strings.Repeat("─", 80))

	now := time.Now()
	for _, doc := range docs {
		uploaded := dateStyle.Render("—")
		if doc.UploadDate != "" {
			if t, err := time.Parse(time.RFC3339, doc.UploadDate); err == nil {
				uploaded = dateStyle.Render(formatWhen(t, now))
			} else {
				uploaded = dateStyle.Render(doc.UploadDate)
			}
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t\n", idStyle.Render(doc.ID), truncate(doc.Title(), 50), uploaded)
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, idStyle.Render("💡 Tip: chat about a document with `docchat chat "+docs[0].ID+"`"))
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.Flags().StringVarP(&documentsSearch, "search", "s", "", "Only show documents whose name contains this term")
	documentsCmd.Flags().BoolVarP(&documentsWatch, "watch", "w", false, "Refresh on the poll interval until interrupted")
}
