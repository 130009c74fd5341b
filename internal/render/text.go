package render

import (
	"fmt"
	"strings"

	"github.com/niklvrr/reviewpulse/internal/domain"
)

// Text текстовая версия отчета в markdown: заголовок и секции со ссылками
func Text(report *domain.Report) string {
	if report.Kind == domain.ReportKindRecentTasks {
		return RecentTasksTable(report)
	}

	var b strings.Builder
	b.WriteString("## " + report.Title + "\n")
	if report.Timeline != "" {
		fmt.Fprintf(&b, "_%s_\n", report.Timeline)
	}

	if report.IsEmpty() {
		if report.EmptyNote != "" {
			fmt.Fprintf(&b, "\n_%s_\n", report.EmptyNote)
		}
		return b.String()
	}

	for _, section := range report.Sections {
		b.WriteString("\n")
		heading := "**" + section.Label + "**"
		if section.Icon != "" {
			heading = section.Icon + " " + heading
		}
		if section.Order != domain.OrderAsIs {
			heading = fmt.Sprintf("%s _(%s)_", heading, section.Order)
		}
		b.WriteString(heading + "\n\n")

		for i, entry := range section.Revisions {
			fmt.Fprintf(&b, "%d. %s - `%s` - _%s_ by %s\n",
				i+1,
				mdLink(entry.URL, entry.Revision.RevisionId()),
				entry.RepoSlug,
				entry.ShortTitle(),
				mdPerson(entry.Author),
			)
			if reviewers := reviewersLine(entry, mdPerson); reviewers != "" {
				b.WriteString("    " + reviewers + "\n")
			}
		}
		for i, entry := range section.Tasks {
			fmt.Fprintf(&b, "%d. %s - _%s_\n", i+1, mdLink(entry.URL, entry.Task.TaskId()), entry.Task.Name)
		}
	}

	return b.String()
}

const recentTasksRowFormat = "%-6.6s | %-12.12s | %-10.10s | %-10.10s | %-10.10s | %s"

// RecentTasksTable таблица фиксированной ширины для отчета RecentTasks
func RecentTasksTable(report *domain.Report) string {
	rows := []string{
		fmt.Sprintf(recentTasksRowFormat, "ID", "OWNER", "CREATED", "CLOSED", "STATUS", "NAME"),
		dashRow(),
	}

	for _, section := range report.Sections {
		for _, entry := range section.Tasks {
			rows = append(rows, fmt.Sprintf(recentTasksRowFormat,
				entry.Task.TaskId(),
				entry.Owner.Name,
				entry.CreatedAt,
				entry.ClosedAt,
				entry.Task.Status,
				entry.Task.Name,
			))
		}
	}

	return strings.Join(rows, "\n")
}

func dashRow() string {
	dashes := strings.Repeat("-", 30)
	row := fmt.Sprintf(recentTasksRowFormat, dashes, dashes, dashes, dashes, dashes, dashes)
	return strings.ReplaceAll(row, " | ", "-+-")
}

func mdLink(url, label string) string {
	if url == "" {
		return label
	}
	return fmt.Sprintf("[%s](%s)", label, url)
}

func mdPerson(p domain.PersonRef) string {
	return "**" + mdLink(p.ProfileURL, p.Name) + "**"
}
