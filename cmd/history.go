package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/api"
)

var (
	historyClear  bool
	historySelect string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the document picker's message log",
	Long: `Show the log shared by all documents, which records every document
selection. Use --select to record a selection and --clear to start over.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyClear && historySelect != "" {
			return fmt.Errorf("--clear and --select cannot be used together")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				internal.LogWarn("Failed to close store: %v", err)
			}
		}()
		history := internal.NewWidgetHistory(store)
		out := cmd.OutOrStdout()

		if historyClear {
			log, err := history.Clear()
			if err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			printTranscript(out, log)
			return nil
		}

		if historySelect != "" {
			name := historySelect
			if client, err := newClient(); err == nil {
				if docs, err := client.ListDocuments(cmd.Context()); err == nil {
					if doc, ok := api.FindDocument(docs, historySelect); ok {
						name = doc.Title()
					}
				} else {
					internal.LogDebug("Could not look up document names: %v", err)
				}
			}
			if err := history.SelectDocument(historySelect, name); warnRecovered(err) != nil {
				return fmt.Errorf("failed to record selection: %w", err)
			}
		}

		log, err := history.Load()
		if err := warnRecovered(err); err != nil {
			return err
		}
		printTranscript(out, log)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Clear the log")
	historyCmd.Flags().StringVar(&historySelect, "select", "", "Record that this document was selected")
}
