package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/api"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF document",
	Long: `Upload a PDF to the backend. The file is checked locally first: it must
have a .pdf extension and open as a PDF with at least one page.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		path := args[0]
		info, err := api.InspectPDF(path)
		if err != nil {
			return err
		}

		var resp *api.UploadResponse
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Uploading %s (%d pages)", path, info.Pages), func(ctx context.Context) error {
			var uploadErr error
			resp, uploadErr = client.Upload(ctx, path)
			return uploadErr
		})
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "%s %s\n", successStyle.Render("✓ Uploaded"), resp.Filename)
		if resp.ID != "" {
			_, _ = fmt.Fprintf(out, "%s %s\n", idStyle.Render("Document ID:"), resp.ID)
		}
		if resp.Message != "" {
			_, _ = fmt.Fprintln(out, resp.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
