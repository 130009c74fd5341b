package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/niklvrr/reviewpulse/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"number": formatNumber,
}

// Каждая страница собирается из layout и своего content
var (
	reportPage  = mustPage("templates/report.html")
	reportsPage = mustPage("templates/reports.html")
	metricsPage = mustPage("templates/metrics.html")
)

func mustPage(name string) *template.Template {
	return template.Must(template.New("page").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", name))
}

func HTML(w io.Writer, report *domain.Report) error {
	return execute(w, reportPage, map[string]any{
		"PageTitle": report.Title,
		"Report":    report,
	})
}

func ReportsHTML(w io.Writer, definitions []domain.ReportDefinition) error {
	return execute(w, reportsPage, map[string]any{
		"PageTitle":   "Reports",
		"Definitions": definitions,
	})
}

func MetricsHTML(w io.Writer, result *domain.MetricsResult) error {
	data := MetricsToJSON(result)
	// в таблице новые периоды сверху
	periods := make([]TaskMetricJSON, 0, len(data.Metrics))
	for i := len(data.Metrics) - 1; i >= 0; i-- {
		periods = append(periods, data.Metrics[i])
	}

	aggregates := make(map[string]float64, len(data.Aggregate.Stats))
	for _, value := range data.Aggregate.Stats {
		aggregates[value.Key] = value.Count
	}
	stats := make([]statRow, 0, len(data.Stats))
	for _, stat := range data.Stats {
		stats = append(stats, statRow{StatSummaryJSON: stat, Aggregate: aggregates[stat.Key]})
	}

	return execute(w, metricsPage, map[string]any{
		"PageTitle": data.Name,
		"Metrics":   data,
		"Periods":   periods,
		"Stats":     stats,
	})
}

// statRow сводка показателя вместе со значением за все окно
type statRow struct {
	StatSummaryJSON
	Aggregate float64
}

func execute(w io.Writer, page *template.Template, data any) error {
	if err := page.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
