package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/usecase/service"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidReports = errors.New("invalid reports configuration")
)

type settingsFile struct {
	RevisionAcceptanceThreshold   *int           `yaml:"revision_acceptance_threshold"`
	RevisionAgeThresholdDays      *int           `yaml:"revision_age_threshold_days"`
	ServicePrefix                 *string        `yaml:"service_prefix"`
	CustomersParentProjectId      int            `yaml:"customers_parent_project_id"`
	TeamProjectNames              []string       `yaml:"team_project_names"`
	Groups                        map[string]int `yaml:"groups"`
	NewProjectTasksThresholdHours *int           `yaml:"new_project_tasks_threshold_hours"`
	UpcomingTasksDueLowerHours    *int           `yaml:"upcoming_tasks_due_threshold_lower_hours"`
	UpcomingTasksDueUpperHours    *int           `yaml:"upcoming_tasks_due_threshold_upper_hours"`
	SlackUsername                 string         `yaml:"slack_username"`
	SlackEmoji                    string         `yaml:"slack_emoji"`
}

type reportFile struct {
	Type                                string   `yaml:"type"`
	Title                               string   `yaml:"title"`
	QueryKey                            string   `yaml:"query_key"`
	Usernames                           []string `yaml:"usernames"`
	GroupReviewers                      []string `yaml:"group_reviewers"`
	Reviewers                           []string `yaml:"reviewers"`
	NonGroupReviewerAcceptanceThreshold int      `yaml:"non_group_reviewer_acceptance_threshold"`
	ThresholdDays                       int      `yaml:"threshold_days"`
	SinceLastRun                        bool     `yaml:"since_last_run"`
	Project                             string   `yaml:"project"`
	Columns                             []string `yaml:"columns"`
	ExcludedTasks                       []int    `yaml:"excluded_tasks"`
	Order                               []string `yaml:"order"`
	SlackChannel                        string   `yaml:"slack_channel"`
	SlackUsername                       string   `yaml:"slack_username"`
	SlackEmoji                          string   `yaml:"slack_emoji"`
}

type reportsFile struct {
	Settings settingsFile          `yaml:"settings"`
	Reports  map[string]reportFile `yaml:"reports"`
}

// Reports настройки и определения отчетов из reports.yaml
type Reports struct {
	Settings    domain.Settings
	Definitions []domain.ReportDefinition
}

// LoadReports читает файл отчетов; отсутствующий файл дает настройки по умолчанию без отчетов
func LoadReports(path string) (*Reports, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Reports{Settings: domain.DefaultSettings()}, nil
		}
		return nil, fmt.Errorf("reading reports file: %w", err)
	}
	return ParseReports(data)
}

func ParseReports(data []byte) (*Reports, error) {
	var raw reportsFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReports, err)
	}

	settings, err := raw.Settings.toDomain()
	if err != nil {
		return nil, err
	}

	// порядок отчетов стабилен между запусками
	names := make([]string, 0, len(raw.Reports))
	for name := range raw.Reports {
		names = append(names, name)
	}
	sort.Strings(names)

	definitions := make([]domain.ReportDefinition, 0, len(names))
	for _, name := range names {
		def, err := raw.Reports[name].toDomain(name)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, def)
	}

	return &Reports{
		Settings:    settings,
		Definitions: definitions,
	}, nil
}

func (s settingsFile) toDomain() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	setPositive := func(dst *int, v *int, key string) error {
		if v == nil {
			return nil
		}
		if *v <= 0 {
			return fmt.Errorf("%w: settings.%s must be positive", ErrInvalidReports, key)
		}
		*dst = *v
		return nil
	}

	if err := setPositive(&settings.RevisionAcceptanceThreshold, s.RevisionAcceptanceThreshold, "revision_acceptance_threshold"); err != nil {
		return settings, err
	}
	if err := setPositive(&settings.RevisionAgeThresholdDays, s.RevisionAgeThresholdDays, "revision_age_threshold_days"); err != nil {
		return settings, err
	}
	if err := setPositive(&settings.NewProjectTasksHours, s.NewProjectTasksThresholdHours, "new_project_tasks_threshold_hours"); err != nil {
		return settings, err
	}
	if err := setPositive(&settings.UpcomingLowerHours, s.UpcomingTasksDueLowerHours, "upcoming_tasks_due_threshold_lower_hours"); err != nil {
		return settings, err
	}
	if err := setPositive(&settings.UpcomingUpperHours, s.UpcomingTasksDueUpperHours, "upcoming_tasks_due_threshold_upper_hours"); err != nil {
		return settings, err
	}
	if settings.UpcomingLowerHours > settings.UpcomingUpperHours {
		return settings, fmt.Errorf("%w: upcoming tasks lower bound is above upper bound", ErrInvalidReports)
	}

	if s.ServicePrefix != nil {
		settings.ServicePrefix = *s.ServicePrefix
	}
	settings.CustomersParentProjectId = s.CustomersParentProjectId
	settings.TeamProjectNames = s.TeamProjectNames
	if len(s.Groups) > 0 {
		settings.Groups = domain.GroupDirectory(s.Groups)
	}
	if s.SlackUsername != "" {
		settings.SlackUsername = s.SlackUsername
	}
	if s.SlackEmoji != "" {
		settings.SlackEmoji = s.SlackEmoji
	}

	return settings, nil
}

func (r reportFile) toDomain(name string) (domain.ReportDefinition, error) {
	kind := domain.ReportKind(r.Type)
	if !kind.IsValid() {
		return domain.ReportDefinition{}, service.WrapError(service.ErrInvalidInput,
			fmt.Errorf("%w: report %q has unknown type %q", ErrInvalidReports, name, r.Type))
	}

	def := domain.ReportDefinition{
		Name:                                name,
		Kind:                                kind,
		Title:                               r.Title,
		QueryKey:                            r.QueryKey,
		Usernames:                           r.Usernames,
		GroupReviewers:                      r.GroupReviewers,
		Reviewers:                           r.Reviewers,
		NonGroupReviewerAcceptanceThreshold: r.NonGroupReviewerAcceptanceThreshold,
		ThresholdDays:                       r.ThresholdDays,
		SinceLastRun:                        r.SinceLastRun,
		Project:                             r.Project,
		Columns:                             r.Columns,
		ExcludedTaskIds:                     r.ExcludedTasks,
		Order:                               r.Order,
		SlackChannel:                        r.SlackChannel,
		SlackUsername:                       r.SlackUsername,
		SlackEmoji:                          r.SlackEmoji,
	}

	switch kind {
	case domain.ReportKindGroupReviewStatus:
		if len(def.GroupReviewers) == 0 {
			return def, fmt.Errorf("%w: report %q needs group_reviewers", ErrInvalidReports, name)
		}
	case domain.ReportKindNewProjectTasks, domain.ReportKindUpcomingProjectTasksDue, domain.ReportKindUrgentAndOverdueProjectTasks:
		if def.Project == "" {
			return def, fmt.Errorf("%w: report %q needs project", ErrInvalidReports, name)
		}
	case domain.ReportKindRecentTasks:
		if len(def.Usernames) == 0 {
			return def, fmt.Errorf("%w: report %q needs usernames", ErrInvalidReports, name)
		}
	}

	return def, nil
}
