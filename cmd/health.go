package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/api"
)

var (
	healthDetails bool
	healthWatch   bool
)

// healthCmd checks the local setup and the backend
var healthCmd = &cobra.Command{
	Use:     "health",
	Aliases: []string{"healthcheck"},
	Short:   "Check the configuration, the session store and the backend",
	Long: `Check the health of docchat by verifying:
  • Configuration
  • Session store access
  • Backend reachability

With --watch only the backend is polled, on the configured poll interval,
until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if healthWatch {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			poller := internal.NewPoller(appConfig.Poll.Interval, func(ctx context.Context) {
				message := backendHealth(ctx, client)
				_, _ = fmt.Fprintf(out, "%s %s\n", dateStyle.Render("["+time.Now().Format("15:04:05")+"]"), message)
			})
			poller.Run(ctx)
			return nil
		}

		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 docchat Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: configuration
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthDetails {
			file := appConfig.File
			if file == "" {
				file = "(defaults and environment only)"
			}
			_, _ = fmt.Fprintf(out, "   Config file: %s\n", file)
			_, _ = fmt.Fprintf(out, "   Backend: %s\n", client.BaseURL())
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: session store
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Opening session store..."))
		storeOK := checkStore(out)
		_, _ = fmt.Fprintln(out)

		// Step 3: backend
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Contacting backend..."))
		resp, err := client.Health(cmd.Context())
		backendOK := err == nil
		if backendOK {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ "+resp.Message))
		} else {
			internal.LogDebug("Health request failed: %v", err)
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ "+api.UnreachableMessage))
			if healthDetails {
				_, _ = fmt.Fprintf(out, "   %v\n", err)
			}
		}
		_, _ = fmt.Fprintln(out)

		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		switch {
		case storeOK && backendOK:
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			return nil
		case storeOK:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Saved conversations are available but the backend is not"))
			return fmt.Errorf("health check failed: backend unreachable")
		default:
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: session store unavailable")
		}
	},
}

func checkStore(out io.Writer) bool {
	store, closeStore, err := openSessionStore()
	if err != nil {
		_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to open session store:"), err)
		return false
	}
	defer closeStore()

	sessions, err := store.ListSessions()
	if err := warnRecovered(err); err != nil {
		_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to read sessions:"), err)
		return false
	}
	_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s store ready, %d saved conversation(s)", appConfig.Store.Driver, len(sessions))))
	if healthDetails && appConfig.Store.DSN != "" {
		_, _ = fmt.Fprintf(out, "   Location: %s\n", appConfig.Store.DSN)
	}
	return true
}

// backendHealth returns the backend's health message, or the unreachable text
func backendHealth(ctx context.Context, client *api.Client) string {
	resp, err := client.Health(ctx)
	if err != nil {
		internal.LogDebug("Health request failed: %v", err)
		return api.UnreachableMessage
	}
	return resp.Message
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().BoolVar(&healthDetails, "details", false, "Show detailed diagnostic information")
	healthCmd.Flags().BoolVarP(&healthWatch, "watch", "w", false, "Poll the backend until interrupted")
}
