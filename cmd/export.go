package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/export"
)

var (
	exportFormat    string
	exportOutputDir string
	exportDocument  string
)

// exportCmd writes saved conversations to files
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved conversations to files",
	Long: `Export saved conversations to various formats (jsonl, md, yaml, json, html).

One file is written per conversation, named <document-id>_<session-id>.<ext>.
Use --doc to export only the conversation of one document.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		store, closeStore, err := openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		records, err := store.Records()
		if err := warnRecovered(err); err != nil {
			return err
		}

		if exportDocument != "" {
			filtered := make([]internal.SessionRecord, 0, 1)
			for _, record := range records {
				if record.Session.DocumentID == exportDocument {
					filtered = append(filtered, record)
				}
			}
			if len(filtered) == 0 {
				return fmt.Errorf("no saved conversation for document %s (use 'docchat sessions list' to see them)", exportDocument)
			}
			records = filtered
		}

		if len(records) == 0 {
			internal.PrintInfo("No saved conversations to export")
			return nil
		}

		if err := os.MkdirAll(exportOutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d conversation(s) to %s", len(records), exportOutputDir), func(ctx context.Context) error {
			for i := range records {
				if err := ctx.Err(); err != nil {
					return err
				}
				path := filepath.Join(exportOutputDir, export.Filename(&records[i], exporter))
				if err := writeExport(exporter, &records[i], path); err != nil {
					internal.LogError("%v", err)
					continue
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		if exported < len(records) {
			return fmt.Errorf("exported %d of %d conversation(s), see the log for failures", exported, len(records))
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Export complete: %d conversation(s) exported to %s", exported, exportOutputDir)))
		return nil
	},
}

func writeExport(exporter export.Exporter, record *internal.SessionRecord, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(record, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json, html)")
	exportCmd.Flags().StringVarP(&exportOutputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&exportDocument, "doc", "", "Export only this document's conversation")
}
