// Package cli дерево команд reviewpulse
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version текущая версия reviewpulse
	Version = "0.1.0"

	// Глобальные флаги
	reportsPath string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "reviewpulse",
	Short: "Review and task reports over a Phabricator tracker",
	Long: `reviewpulse builds review-status and task reports from a Phabricator tracker
and aggregates periodic task metrics.

Reports are declared in a YAML file (REPORTS_CONFIG, default reports.yaml).
Tracker access and storage are configured through the environment or a .env file.

Examples:
  reviewpulse reports                        # List configured reports
  reviewpulse report team-review             # Print a report to the terminal
  reviewpulse report team-review --slack     # Post a report to Slack
  reviewpulse metrics bugs --interval month  # Monthly bug metrics
  reviewpulse serve                          # Start the web dashboard
  reviewpulse whoami                         # Check the tracker token`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute запускает корневую команду; вызывается из main
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&reportsPath, "reports", "", "Path to the reports file (default: $REPORTS_CONFIG or reports.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug|info|warn|error)")
}
