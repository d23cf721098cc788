package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/config"
)

var (
	cfgFile    string
	verbose    bool
	logFile    string
	storeFlag  string
	dsnFlag    string
	backendURL string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// appConfig is loaded before every command runs
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your PDF documents from the terminal",
	Long: `A CLI client for the document Q&A backend.

Upload PDFs, browse them, ask questions and keep one conversation per
document. Conversations are stored locally (sqlite by default, or memory
or redis) and can be resumed, cleared or exported.

Quick Start:
  docchat upload report.pdf              # Upload a document
  docchat documents                      # List uploaded documents
  docchat chat <document-id>             # Chat about a document
  docchat sessions list                  # List saved conversations
  docchat export --format md             # Export conversations as Markdown`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		internal.SyncLogs()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges flags, environment and config file into appConfig and
// applies the logging settings
func loadConfig(cmd *cobra.Command) error {
	paths, err := config.DetectPaths()
	if err != nil {
		return err
	}

	v := viper.New()
	flags := rootCmd.PersistentFlags()
	for key, name := range map[string]string{
		config.KeyBackendURL:  "backend",
		config.KeyStoreDriver: "store",
		config.KeyStoreDSN:    "dsn",
		config.KeyLogFile:     "log-file",
		config.KeyVerbose:     "verbose",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	cfg, err := config.Load(v, cfgFile, paths)
	if err != nil {
		return err
	}
	appConfig = cfg

	internal.SetVerbose(cfg.Verbose)
	internal.SetLogFile(cfg.Log.File)
	if cfg.File != "" {
		internal.LogDebug("Using config file %s", cfg.File)
	}
	return nil
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (loadConfig refers to rootCmd)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/docchat/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&logFile, "log-file", "", "Also write JSON logs to this file (rotated)")
	flags.StringVar(&storeFlag, "store", "", "Session store driver: sqlite, memory or redis")
	flags.StringVar(&dsnFlag, "dsn", "", "Session store location (sqlite path or redis URL)")
	flags.StringVar(&backendURL, "backend", "", "Backend base URL (default http://localhost:8000)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
