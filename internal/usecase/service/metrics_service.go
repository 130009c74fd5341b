package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/models/dto"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/tracker"
	"go.uber.org/zap"
)

var (
	retrieveMetricsError = errors.New("retrieve metrics error")
	fetchTasksError      = errors.New("fetch tasks error")
)

// Интерфейс трекера для метрик
type MetricsTracker interface {
	FetchTasks(ctx context.Context, c *dto.TaskConstraints) ([]domain.Task, error)
	ProjectByName(ctx context.Context, name string, includeMembers bool) (*domain.Project, error)
	AllProjects(ctx context.Context) ([]domain.Project, error)
	UsersByPHID(ctx context.Context, phids []string) (map[string]domain.User, error)
}

// MetricsQuery параметры расчета; нулевые даты заменяются окном по умолчанию
type MetricsQuery struct {
	Kind        string
	Interval    domain.Interval
	PeriodStart time.Time
	PeriodEnd   time.Time
	Team        string
	Customer    string
	Projects    []string
}

type MetricsService struct {
	tracker  MetricsTracker
	settings domain.Settings
	log      *zap.Logger
	now      func() time.Time
}

func NewMetricsService(tracker MetricsTracker, settings domain.Settings, log *zap.Logger) *MetricsService {
	return &MetricsService{
		tracker:  tracker,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

func (s *MetricsService) Kinds() []domain.MetricKind {
	return domain.MetricKinds
}

// filters разрешенные фильтры одного прогона
type filters struct {
	memberPHIDs  []string
	teamIsEmpty  bool
	projectPHIDs []string
}

func (s *MetricsService) Retrieve(ctx context.Context, q *MetricsQuery) (*domain.MetricsResult, error) {
	log := s.log.With(zap.String("run_id", uuid.NewString()))
	log.Info("metrics request accepted",
		zap.String("kind", q.Kind),
		zap.String("interval", string(q.Interval)),
		zap.String("team", q.Team),
		zap.String("customer", q.Customer),
		zap.Strings("projects", q.Projects),
	)

	kind, ok := domain.MetricKindBySlug(q.Kind)
	if !ok {
		return nil, WrapError(ErrInvalidInput, fmt.Errorf("unknown metric kind %q", q.Kind))
	}

	interval := q.Interval
	if interval == "" {
		interval = domain.DefaultInterval
	}

	start, end := q.PeriodStart, q.PeriodEnd
	if start.IsZero() || end.IsZero() {
		defStart, defEnd := DefaultMetricsWindow(interval, s.now())
		if start.IsZero() {
			start = defStart
		}
		if end.IsZero() {
			end = defEnd
		}
	}

	// Сначала корзины: ошибки диапазона не должны ходить в трекер
	periods, err := BuildPeriods(interval, start, end)
	if err != nil {
		log.Error("failed to build periods",
			zap.Time("period_start", start),
			zap.Time("period_end", end),
			zap.Error(err),
		)
		return nil, err
	}

	// Кеш проектов на этот прогон
	projects, err := s.tracker.AllProjects(ctx)
	if err != nil {
		log.Error("failed to load projects", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", retrieveMetricsError, err)
	}
	index := NewProjectIndex(projects, s.settings.CustomersParentProjectId, s.settings.ServicePrefix)

	f, err := s.resolveFilters(ctx, q, index)
	if err != nil {
		log.Error("failed to resolve filters", zap.Error(err))
		return nil, err
	}
	if f.teamIsEmpty {
		log.Warn("team has no members, all buckets will be empty", zap.String("team", q.Team))
	}

	metrics := make([]domain.TaskMetric, 0, len(periods))
	for _, period := range periods {
		created, closed, err := s.fetchPeriod(ctx, kind, period, f)
		if err != nil {
			log.Error("failed to fetch period tasks",
				zap.String("period", period.Name),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %w", retrieveMetricsError, err)
		}
		metrics = append(metrics, domain.TaskMetric{
			PeriodName:   period.Name,
			PeriodStart:  period.Start,
			PeriodEnd:    period.End,
			TasksCreated: created,
			TasksClosed:  closed,
		})
	}

	// Для отображения от старых к новым
	slices.Reverse(metrics)

	usernames, err := s.ownerUsernames(ctx, metrics)
	if err != nil {
		log.Error("failed to resolve task owners", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", retrieveMetricsError, err)
	}

	result := &domain.MetricsResult{
		Kind:     kind,
		Interval: interval,
		Metrics:  metrics,
		Stats:    ComputeStats(metrics),
		Aggregate: Aggregate(metrics, SegmentLookups{
			Projects:  index,
			Usernames: usernames,
		}),
	}

	log.Info("metrics retrieved",
		zap.String("kind", kind.Slug),
		zap.Int("periods", len(metrics)),
		zap.Int("tasks_created", result.Aggregate.Metric.NumCreated()),
		zap.Int("tasks_closed", result.Aggregate.Metric.NumClosed()),
	)

	return result, nil
}

func (s *MetricsService) resolveFilters(ctx context.Context, q *MetricsQuery, index *ProjectIndex) (*filters, error) {
	f := &filters{}

	if q.Team != "" {
		team, err := s.tracker.ProjectByName(ctx, q.Team, true)
		if err != nil {
			if errors.Is(err, tracker.ErrNotFound) {
				return nil, WrapError(ErrTeamNotFound, err)
			}
			return nil, fmt.Errorf("%w: %w", retrieveMetricsError, err)
		}
		f.memberPHIDs = team.MemberPHIDs
		f.teamIsEmpty = len(team.MemberPHIDs) == 0
	}

	if q.Customer != "" {
		customer, ok := index.CustomerByName(q.Customer)
		if !ok {
			return nil, WrapError(ErrCustomerNotFound, fmt.Errorf("no customer named %q", q.Customer))
		}
		f.projectPHIDs = append(f.projectPHIDs, customer.PHID)
	}

	for _, name := range q.Projects {
		project, err := s.tracker.ProjectByName(ctx, name, false)
		if err != nil {
			if errors.Is(err, tracker.ErrNotFound) {
				return nil, WrapError(ErrProjectNotFound, err)
			}
			return nil, fmt.Errorf("%w: %w", retrieveMetricsError, err)
		}
		f.projectPHIDs = append(f.projectPHIDs, project.PHID)
	}

	f.projectPHIDs = domain.UniquePHIDs(f.projectPHIDs)
	return f, nil
}

func (s *MetricsService) fetchPeriod(ctx context.Context, kind domain.MetricKind, period domain.Period, f *filters) ([]domain.Task, []domain.Task, error) {
	// Команда без участников: фильтр по авторам пуст, задач нет
	if f.teamIsEmpty {
		return []domain.Task{}, []domain.Task{}, nil
	}

	created, err := s.fetchByProjects(ctx, f.projectPHIDs, dto.TaskConstraints{
		Subtypes:     kind.Subtypes,
		CreatedStart: period.Start,
		CreatedEnd:   period.End,
		AuthorPHIDs:  f.memberPHIDs,
	})
	if err != nil {
		return nil, nil, err
	}

	closed, err := s.fetchByProjects(ctx, f.projectPHIDs, dto.TaskConstraints{
		Subtypes:    kind.Subtypes,
		ClosedStart: period.Start,
		ClosedEnd:   period.End,
		CloserPHIDs: f.memberPHIDs,
	})
	if err != nil {
		return nil, nil, err
	}

	return created, closed, nil
}

// fetchByProjects по отдельному запросу на каждый проект, результаты склеиваются
func (s *MetricsService) fetchByProjects(ctx context.Context, projectPHIDs []string, base dto.TaskConstraints) ([]domain.Task, error) {
	if len(projectPHIDs) == 0 {
		tasks, err := s.tracker.FetchTasks(ctx, &base)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", fetchTasksError, err)
		}
		return tasks, nil
	}

	tasks := []domain.Task{}
	for _, phid := range projectPHIDs {
		c := base
		c.ProjectPHIDs = []string{phid}
		batch, err := s.tracker.FetchTasks(ctx, &c)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", fetchTasksError, err)
		}
		tasks = append(tasks, batch...)
	}
	return tasks, nil
}

func (s *MetricsService) ownerUsernames(ctx context.Context, metrics []domain.TaskMetric) (map[string]string, error) {
	var phids []string
	for _, metric := range metrics {
		for _, task := range metric.TasksClosed {
			phids = append(phids, task.OwnerPHID)
		}
	}
	phids = domain.UniquePHIDs(phids)
	if len(phids) == 0 {
		return map[string]string{}, nil
	}

	users, err := s.tracker.UsersByPHID(ctx, phids)
	if err != nil {
		return nil, err
	}

	usernames := make(map[string]string, len(users))
	for phid, user := range users {
		usernames[phid] = user.Username
	}
	return usernames, nil
}
