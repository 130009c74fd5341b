package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/niklvrr/reviewpulse/internal/domain"
)

var severityColors = map[domain.Severity]*color.Color{
	domain.SeverityGood:    color.New(color.FgGreen, color.Bold),
	domain.SeverityInfo:    color.New(color.FgBlue, color.Bold),
	domain.SeverityWarning: color.New(color.FgYellow, color.Bold),
	domain.SeverityNotice:  color.New(color.FgHiYellow, color.Bold),
	domain.SeverityDanger:  color.New(color.FgRed, color.Bold),
	domain.SeverityMuted:   color.New(color.FgHiBlack, color.Bold),
}

// Terminal печатает отчет с подсветкой секций по серьезности
func Terminal(w io.Writer, report *domain.Report) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if _, err := fmt.Fprintf(w, "%s %s\n", cyan(report.Title), gray("("+report.Timeline+")")); err != nil {
		return err
	}

	if report.Kind == domain.ReportKindRecentTasks {
		_, err := fmt.Fprintln(w, RecentTasksTable(report))
		return err
	}

	if report.IsEmpty() {
		_, err := fmt.Fprintf(w, "\n%s\n", gray(report.EmptyNote))
		return err
	}

	for _, section := range report.Sections {
		heading, ok := severityColors[section.Severity]
		if !ok {
			heading = color.New(color.Bold)
		}
		label := section.Label
		if section.Order != domain.OrderAsIs {
			label = fmt.Sprintf("%s (%s)", label, section.Order)
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", heading.Sprint(label)); err != nil {
			return err
		}

		for i, entry := range section.Revisions {
			if _, err := fmt.Fprintf(w, "%3d. %s [%s] %s %s %s\n",
				i+1,
				entry.Revision.RevisionId(),
				entry.RepoSlug,
				entry.ShortTitle(),
				gray("by"),
				entry.Author.Name,
			); err != nil {
				return err
			}
			if err := printReviewers(w, entry); err != nil {
				return err
			}
		}
		for i, entry := range section.Tasks {
			if _, err := fmt.Fprintf(w, "%3d. %s %s %s\n", i+1, entry.Task.TaskId(), entry.Task.Name, gray(entry.URL)); err != nil {
				return err
			}
		}
	}

	if report.WebURL != "" {
		if _, err := fmt.Fprintf(w, "\n%s %s\n", gray("View in web:"), report.WebURL); err != nil {
			return err
		}
	}
	return nil
}

func printReviewers(w io.Writer, entry domain.RevisionEntry) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	names := func(people []domain.PersonRef) string {
		return joinPeople(people, func(p domain.PersonRef) string { return p.Name })
	}

	if len(entry.Acceptors) > 0 {
		if _, err := fmt.Fprintf(w, "       %s %s\n", green("accepted:"), names(entry.Acceptors)); err != nil {
			return err
		}
	}
	if len(entry.Blockers) > 0 {
		if _, err := fmt.Fprintf(w, "       %s %s\n", red("blocking:"), names(entry.Blockers)); err != nil {
			return err
		}
	}
	return nil
}

// TerminalMetrics таблица корзин и сводная статистика окна
func TerminalMetrics(w io.Writer, result *domain.MetricsResult) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if _, err := fmt.Fprintf(w, "%s %s\n\n", cyan(result.Kind.Name), yellow("by "+string(result.Interval))); err != nil {
		return err
	}

	const rowFormat = "%-30.30s %8s %8s %8s %8s %8s\n"
	if _, err := fmt.Fprintf(w, rowFormat, "PERIOD", "CREATED", "CLOSED", "PTS+", "PTS DONE", "RATIO"); err != nil {
		return err
	}
	// новые периоды сверху
	for i := len(result.Metrics) - 1; i >= 0; i-- {
		m := result.Metrics[i]
		if _, err := fmt.Fprintf(w, rowFormat,
			m.PeriodName,
			fmt.Sprint(m.NumCreated()),
			fmt.Sprint(m.NumClosed()),
			formatNumber(m.PointsAdded()),
			formatNumber(m.PointsCompleted()),
			formatNumber(m.Ratio()),
		); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n%s\n", cyan("Statistics")); err != nil {
		return err
	}
	for _, stat := range result.Stats {
		if _, err := fmt.Fprintf(w, "%-36s max %s  min %s  mean %s  median %s\n",
			stat.Name,
			formatNumber(stat.Max),
			formatNumber(stat.Min),
			formatNumber(stat.Mean),
			formatNumber(stat.Median),
		); err != nil {
			return err
		}
	}
	return nil
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
