package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/api"
)

var summarizeRefresh bool

var summarizeCmd = &cobra.Command{
	Use:     "summarize <document-id>",
	Aliases: []string{"summary"},
	Short:   "Print the backend's summary of a document",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		var summary string
		err = internal.ShowProgress(cmd.Context(), "Summarizing...", func(ctx context.Context) error {
			var sumErr error
			summary, sumErr = client.Summarize(ctx, args[0], summarizeRefresh)
			return sumErr
		})
		if err != nil {
			if !errors.Is(err, internal.ErrNetworkFailure) {
				return err
			}
			internal.LogWarn("Summary failed: %v", err)
			summary = api.SummaryErrorText
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, headerStyle.Render("📝 Summary of "+args[0]))
		_, _ = fmt.Fprintln(out, summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().BoolVar(&summarizeRefresh, "refresh", false, "Ignore any cached summary")
}
