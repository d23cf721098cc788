package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file,
DOCCHAT_* environment variables and flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := appConfig.YAML()
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		w := cmd.OutOrStdout()
		if appConfig.File != "" {
			_, _ = fmt.Fprintln(w, idStyle.Render("# "+appConfig.File))
		}
		_, _ = fmt.Fprint(w, string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
