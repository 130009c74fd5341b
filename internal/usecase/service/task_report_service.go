package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/models/dto"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/tracker"
)

const taskDateLayout = "2006-01-02"

var (
	taskSectionColors = []string{"#333333", "#666666"}

	defaultNewTasksOrder = []string{"-updated", "-fulltext-modified", "-fulltext-created", "-id"}
	defaultTasksOrder    = []string{"-id"}
)

// newProjectTasksReport открытые неназначенные задачи проекта, созданные за последние N часов
func (s *ReportService) newProjectTasksReport(ctx context.Context, def domain.ReportDefinition) (*domain.Report, error) {
	hours := s.settings.NewProjectTasksHours
	if hours <= 0 {
		hours = domain.DefaultNewProjectTasksHours
	}

	project, err := s.project(ctx, def.Project)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tracker.FetchTasks(ctx, &dto.TaskConstraints{
		ProjectPHIDs: []string{project.PHID},
		Statuses:     []string{"open"},
		Order:        orderOr(def.Order, defaultNewTasksOrder),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generateReportError, err)
	}

	threshold := s.now().Add(-time.Duration(hours) * time.Hour)
	var fresh []domain.Task
	for _, task := range tasks {
		if !task.IsAssigned() && task.CreatedAt.After(threshold) {
			fresh = append(fresh, task)
		}
	}

	report := &domain.Report{
		Title:     fmt.Sprintf("%s - New Project Tasks", project.Name),
		Timeline:  fmt.Sprintf("Created in the last %d hours", hours),
		EmptyNote: emptyNote,
	}
	if len(fresh) > 0 {
		section := taskSection(domain.BucketNewTasks, fmt.Sprintf("%d New %s", len(fresh), PluralizeNoun("Task", len(fresh))), 0)
		section.Tasks = s.taskEntries(fresh, nil)
		report.Sections = append(report.Sections, section)
	}

	return report, nil
}

// projectColumnsReport по секции на каждую настроенную колонку доски проекта
func (s *ReportService) projectColumnsReport(ctx context.Context, def domain.ReportDefinition) (*domain.Report, error) {
	project, err := s.project(ctx, def.Project)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{EmptyNote: emptyNote}
	if def.Kind == domain.ReportKindUrgentAndOverdueProjectTasks {
		report.Title = fmt.Sprintf("%s - Urgent or Overdue Tasks", project.Name)
		report.Timeline = fmt.Sprintf("past due - within %d hours", s.settings.UpcomingUpperHours)
	} else {
		report.Title = fmt.Sprintf("%s - Upcoming Tasks Due Soon", project.Name)
		report.Timeline = fmt.Sprintf("within the next %d - %d hours", s.settings.UpcomingLowerHours, s.settings.UpcomingUpperHours)
	}

	if len(def.Columns) == 0 {
		return report, nil
	}

	columns, err := s.tracker.ProjectColumns(ctx, project.PHID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generateReportError, err)
	}

	for _, name := range def.Columns {
		idx := slices.IndexFunc(columns, func(c domain.ProjectColumn) bool { return c.Name == name })
		if idx < 0 {
			continue
		}
		column := columns[idx]

		tasks, err := s.tracker.FetchTasks(ctx, &dto.TaskConstraints{
			ProjectPHIDs: []string{project.PHID},
			Statuses:     []string{"open"},
			ColumnPHIDs:  []string{column.PHID},
			Order:        orderOr(def.Order, defaultTasksOrder),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", generateReportError, err)
		}

		tasks = slices.DeleteFunc(tasks, func(t domain.Task) bool {
			return slices.Contains(def.ExcludedTaskIds, t.Id)
		})
		if len(tasks) == 0 {
			continue
		}

		label := fmt.Sprintf("%d %s %s", len(tasks), column.Name, PluralizeNoun("Task", len(tasks)))
		section := taskSection(domain.ColumnBucketKey(column.PHID), label, len(report.Sections))
		section.Tasks = s.taskEntries(tasks, nil)
		report.Sections = append(report.Sections, section)
	}

	return report, nil
}

// recentTasksReport задачи, назначенные на перечисленных пользователей
func (s *ReportService) recentTasksReport(ctx context.Context, def domain.ReportDefinition) (*domain.Report, error) {
	report := &domain.Report{
		Title:     "Recent Tasks",
		Timeline:  strings.Join(def.Usernames, ", "),
		EmptyNote: emptyNote,
	}
	if len(def.Usernames) == 0 {
		return report, nil
	}

	users, err := s.tracker.UsersByUsername(ctx, def.Usernames)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generateReportError, err)
	}
	owners := make(map[string]domain.User, len(users))
	phids := make([]string, 0, len(users))
	for _, user := range users {
		owners[user.PHID] = user
		phids = append(phids, user.PHID)
	}
	if len(phids) == 0 {
		return report, nil
	}

	tasks, err := s.tracker.FetchTasks(ctx, &dto.TaskConstraints{
		OwnerPHIDs: phids,
		Order:      orderOr(def.Order, defaultTasksOrder),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generateReportError, err)
	}

	if len(tasks) > 0 {
		section := taskSection(domain.BucketRecentTasks, fmt.Sprintf("%d %s", len(tasks), PluralizeNoun("Task", len(tasks))), 0)
		section.Tasks = s.taskEntries(tasks, owners)
		report.Sections = append(report.Sections, section)
	}

	return report, nil
}

func (s *ReportService) project(ctx context.Context, name string) (*domain.Project, error) {
	if name == "" {
		return nil, WrapError(ErrInvalidInput, errors.New("project is required"))
	}
	project, err := s.tracker.ProjectByName(ctx, name, false)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			return nil, WrapError(ErrProjectNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", generateReportError, err)
	}
	return project, nil
}

func (s *ReportService) taskEntries(tasks []domain.Task, owners map[string]domain.User) []domain.TaskEntry {
	entries := make([]domain.TaskEntry, 0, len(tasks))
	for _, task := range tasks {
		entry := domain.TaskEntry{
			Task:      task,
			URL:       task.URL(s.settings.TrackerURL),
			CreatedAt: task.CreatedAt.Format(taskDateLayout),
		}
		if task.ClosedAt != nil {
			entry.ClosedAt = task.ClosedAt.Format(taskDateLayout)
		}
		if owners != nil && task.IsAssigned() {
			entry.Owner = s.personRef(task.OwnerPHID, owners)
		}
		entries = append(entries, entry)
	}
	return entries
}

func taskSection(key domain.BucketKey, label string, position int) domain.Section {
	return domain.Section{
		Key:      key,
		Label:    label,
		Order:    domain.OrderAsIs,
		Severity: domain.SeverityMuted,
		Color:    taskSectionColors[position%len(taskSectionColors)],
	}
}

func orderOr(order, fallback []string) []string {
	if len(order) > 0 {
		return order
	}
	return fallback
}
