package domain

const (
	DefaultRevisionAcceptanceThreshold = 2
	DefaultRevisionAgeThresholdDays    = 14
	DefaultNewProjectTasksHours        = 24
	DefaultUpcomingLowerHours          = 24
	DefaultUpcomingUpperHours          = 72
)

// Settings общие настройки отчетов
type Settings struct {
	TrackerURL                  string
	WebBaseURL                  string
	RevisionAcceptanceThreshold int
	RevisionAgeThresholdDays    int
	ServicePrefix               string
	CustomersParentProjectId    int
	// TeamProjectNames проекты-команды, доступные как фильтр метрик
	TeamProjectNames     []string
	Groups               GroupDirectory
	NewProjectTasksHours int
	UpcomingLowerHours   int
	UpcomingUpperHours   int
	SlackUsername        string
	SlackEmoji           string
}

func DefaultSettings() Settings {
	return Settings{
		RevisionAcceptanceThreshold: DefaultRevisionAcceptanceThreshold,
		RevisionAgeThresholdDays:    DefaultRevisionAgeThresholdDays,
		ServicePrefix:               DefaultServicePrefix,
		Groups:                      GroupDirectory{},
		NewProjectTasksHours:        DefaultNewProjectTasksHours,
		UpcomingLowerHours:          DefaultUpcomingLowerHours,
		UpcomingUpperHours:          DefaultUpcomingUpperHours,
		SlackUsername:               "reviewpulse",
		SlackEmoji:                  ":bar_chart:",
	}
}

// ReportDefinition именованный отчет из конфигурации
type ReportDefinition struct {
	Name     string
	Kind     ReportKind
	Title    string
	QueryKey string
	// Usernames команда: блокеры из этого списка означают "нужны изменения"
	Usernames []string
	// GroupReviewers имена проектов-групп, участники которых ревьюят изменения
	GroupReviewers                      []string
	Reviewers                           []string
	NonGroupReviewerAcceptanceThreshold int
	ThresholdDays                       int
	SinceLastRun                        bool
	Project                             string
	Columns                             []string
	ExcludedTaskIds                     []int
	Order                               []string
	SlackChannel                        string
	SlackUsername                       string
	SlackEmoji                          string
}
