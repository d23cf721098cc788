package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf <document-id>",
	Short: "Print the URL of a document's PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		pdfURL, err := client.DocumentURL(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to locate PDF: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), pdfURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pdfCmd)
}
