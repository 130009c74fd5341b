package cli

import (
	"io"
	"strings"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/render"
	"github.com/niklvrr/reviewpulse/internal/usecase/service"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <kind>",
	Short: "Aggregate task metrics per period",
	Long: `Aggregate created and closed tasks of a metric kind into weekly, monthly
or quarterly buckets and print per-period numbers, cross-period statistics
and the whole-window breakdown by customer, owner and service.

Kinds: alltasks, bugs, features, stories, tasks.

Without --start/--end the window depends on the interval:
  week     the last 31 days
  month    about a year of whole months
  quarter  about a year of whole quarters

Examples:
  reviewpulse metrics bugs
  reviewpulse metrics tasks --interval month --team Platform
  reviewpulse metrics features --start 2024-01-01 --end 2024-07-01 --format json
  reviewpulse metrics alltasks --projects API,Web --format html > metrics.html`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

var (
	metricsInterval string
	metricsStart    string
	metricsEnd      string
	metricsTeam     string
	metricsCustomer string
	metricsProjects []string
	metricsFormat   string
)

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().StringVarP(&metricsInterval, "interval", "i", string(domain.DefaultInterval), "Bucket size (week|month|quarter)")
	metricsCmd.Flags().StringVar(&metricsStart, "start", "", "Window start, YYYY-MM-DD")
	metricsCmd.Flags().StringVar(&metricsEnd, "end", "", "Window end (exclusive), YYYY-MM-DD")
	metricsCmd.Flags().StringVar(&metricsTeam, "team", "", "Only tasks authored or closed by members of this team project")
	metricsCmd.Flags().StringVar(&metricsCustomer, "customer", "", "Only tasks tagged with this customer project")
	metricsCmd.Flags().StringSliceVar(&metricsProjects, "projects", nil, "Only tasks tagged with these projects")
	metricsCmd.Flags().StringVarP(&metricsFormat, "format", "f", formatTerminal, "Output format (terminal|json|html)")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	if err := checkFormat(metricsFormat, formatTerminal, formatJSON, formatHTML); err != nil {
		return err
	}

	q, err := buildMetricsQuery(args[0], metricsInterval, metricsStart, metricsEnd, metricsTeam, metricsCustomer, metricsProjects)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.metricsService().Retrieve(ctx, q)
	if err != nil {
		return err
	}
	return writeMetrics(cmd.OutOrStdout(), result, metricsFormat)
}

// buildMetricsQuery переводит флаги в запрос; пустые даты остаются нулевыми и заменяются окном по умолчанию
func buildMetricsQuery(kind, interval, start, end, team, customer string, projects []string) (*service.MetricsQuery, error) {
	q := &service.MetricsQuery{
		Kind:     kind,
		Interval: domain.Interval(interval),
		Team:     strings.TrimSpace(team),
		Customer: strings.TrimSpace(customer),
	}
	for _, p := range projects {
		if p = strings.TrimSpace(p); p != "" {
			q.Projects = append(q.Projects, p)
		}
	}

	if start != "" {
		t, err := service.ParseDate(start)
		if err != nil {
			return nil, err
		}
		q.PeriodStart = t
	}
	if end != "" {
		t, err := service.ParseDate(end)
		if err != nil {
			return nil, err
		}
		q.PeriodEnd = t
	}
	return q, nil
}

func writeMetrics(w io.Writer, result *domain.MetricsResult, format string) error {
	switch format {
	case formatJSON:
		return writeIndentedJSON(w, render.MetricsToJSON(result))
	case formatHTML:
		return render.MetricsHTML(w, result)
	default:
		return render.TerminalMetrics(w, result)
	}
}
