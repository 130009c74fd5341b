package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/niklvrr/reviewpulse/internal/config"
	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/transport/dto/response"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List configured reports",
	Long: `List the reports declared in the reports file.

Only the reports file is read; the tracker is not contacted.`,
	Args: cobra.NoArgs,
	RunE: runReports,
}

var reportsJSON bool

func init() {
	rootCmd.AddCommand(reportsCmd)

	reportsCmd.Flags().BoolVar(&reportsJSON, "json", false, "Print the list as JSON")
}

func runReports(cmd *cobra.Command, args []string) error {
	path := reportsPath
	if path == "" {
		var err error
		if path, err = config.ReportsPath(); err != nil {
			return err
		}
	}
	reports, err := config.LoadReports(path)
	if err != nil {
		return err
	}

	if reportsJSON {
		return writeIndentedJSON(cmd.OutOrStdout(), response.NewReportsResponse(reports.Definitions))
	}
	return writeReportList(cmd.OutOrStdout(), reports.Definitions)
}

func writeReportList(w io.Writer, defs []domain.ReportDefinition) error {
	if len(defs) == 0 {
		_, err := fmt.Fprintln(w, "No reports configured.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSINCE LAST RUN\tSLACK CHANNEL")
	for _, def := range defs {
		channel := def.SlackChannel
		if channel == "" {
			channel = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", def.Name, def.Kind, def.SinceLastRun, channel)
	}
	return tw.Flush()
}
